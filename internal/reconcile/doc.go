// Package reconcile rebuilds the host's live queue from an expanded URI list
// and re-derives the queue entry that was current when the session was saved.
//
// The saved index counts positions in the expected URI list, but the backend
// may refuse some URIs, so the live queue can be shorter than the list. The
// default walk strategy pairs both lists in order and never attributes the
// position to the wrong one of two entries sharing a URI. The direct strategy
// trusts the live queue and reads the entry at the index.
package reconcile
