package metrics

import (
	"time"

	"autoplay/internal/logging"
)

// StatsProvider interface for collecting stats
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the current session statistics
type Stats struct {
	Phase           string
	TracklistLength int
	LastCapture     time.Time
}

// Collector periodically collects and updates metrics
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	if stats.Phase != "" {
		SetPhase(stats.Phase)
	}
	TracklistLength.Set(float64(stats.TracklistLength))
	if !stats.LastCapture.IsZero() {
		LastCaptureTimestamp.Set(float64(stats.LastCapture.Unix()))
	}

	logging.Debug("Metrics collected: phase=%s, tracks=%d", stats.Phase, stats.TracklistLength)
}
