package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"autoplay/internal/database"
	"autoplay/internal/logging"
	"autoplay/internal/startup"
	"autoplay/internal/state"
)

// Timeout for state store operations
const defaultTimeout = 30 * time.Second

type options struct {
	configFile string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "autoplayctl",
		Short: "Inspect and manage the saved autoplay session",
		Long: `autoplayctl reads the same configuration as the autoplay daemon and
works on its state store directly. Stop the daemon before resetting.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", os.Getenv(startup.ConfigFileEnv),
		"YAML config file (default from "+startup.ConfigFileEnv+")")

	root.AddCommand(
		newShowCmd(opts),
		newHistoryCmd(opts),
		newResetCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return root
}

func (o *options) load() (*startup.Config, error) {
	return startup.ParseConfig(o.configFile)
}

// openStore opens the configured backend. The returned close function is
// never nil.
func openStore(ctx context.Context, cfg *startup.Config) (state.Store, func(), error) {
	if cfg.StateBackend != startup.BackendSQLite {
		return state.NewFileStore(cfg.StatePath), func() {}, nil
	}
	db, err := database.New(ctx, cfg.StatePath, &database.Options{
		HistoryLimit: cfg.HistoryLimit,
		Logger:       logging.Discard,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, func() { _ = db.Close() }, nil
}

func newShowCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), defaultTimeout)
			defer cancel()

			store, closeStore, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			s, err := state.Read(ctx, store, logging.Discard)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					fmt.Fprintf(cmd.ErrOrStderr(), "No session saved at %s\n", store.Location())
					return nil
				}
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON || !isTerminal(out) {
				data, err := state.Encode(s)
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			}
			printSession(out, store.Location(), s)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw document even on a terminal")
	return cmd
}

func newHistoryCmd(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past captures (sqlite backend only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if cfg.StateBackend != startup.BackendSQLite {
				return fmt.Errorf("history requires state_backend %s (current: %s)", startup.BackendSQLite, cfg.StateBackend)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), defaultTimeout)
			defer cancel()

			store, closeStore, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			entries, err := store.(*database.Database).History(ctx, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No history")
				return nil
			}
			for _, e := range entries {
				summary := "unreadable"
				if s, _, err := state.Decode(e.Document); err == nil {
					summary = summarize(s)
				}
				fmt.Fprintf(out, "%4d  %s  %s\n", e.ID, e.SavedAt.Local().Format("2006-01-02 15:04:05"), summary)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of captures to list, 0 for all")
	return cmd
}

func newResetCmd(opts *options) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the saved session so the next start restores nothing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			if !yes {
				ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Delete the saved session at "+cfg.StatePath+"?")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), defaultTimeout)
			defer cancel()

			if cfg.StateBackend == startup.BackendSQLite {
				store, closeStore, err := openStore(ctx, cfg)
				if err != nil {
					return err
				}
				defer closeStore()
				if err := store.(*database.Database).Reset(ctx); err != nil {
					return err
				}
			} else if err := os.Remove(cfg.StatePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to remove state file: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Saved session deleted.")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newConfigCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Validate and print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "state:      %s (%s)\n", cfg.StatePath, cfg.StateBackend)
			fmt.Fprintf(out, "mpd:        %s\n", cfg.MPD.Addr)
			fmt.Fprintf(out, "strategy:   %s\n", cfg.Strategy)
			fmt.Fprintf(out, "save on:    %s\n", strings.Join(cfg.SaveOnEvents, ","))
			fmt.Fprintf(out, "interval:   %v\n", cfg.SaveInterval)

			described := cfg.Overrides.Describe()
			keys := make([]string, 0, len(described))
			for k := range described {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintln(out, "overrides:")
			for _, k := range keys {
				fmt.Fprintf(out, "  %-23s %s\n", k, described[k])
			}
			return nil
		},
	}
}

// confirm asks a yes/no question. A non-interactive stdin never confirms.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	if !isTerminal(in) {
		return false, errors.New("refusing to reset without a terminal; pass --yes")
	}
	fmt.Fprintf(out, "%s [y/N]: ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func isTerminal(v interface{}) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func printSession(out io.Writer, location string, s *state.SessionState) {
	fmt.Fprintf(out, "Session: %s\n", location)
	fmt.Fprintf(out, "Tracks:  %d\n", len(s.Tracklist.URIs))
	for i, uri := range s.Tracklist.URIs {
		marker := " "
		if s.Tracklist.Index != nil && *s.Tracklist.Index == i {
			marker = ">"
		}
		fmt.Fprintf(out, "  %s %3d  %s\n", marker, i, uri)
	}
	fmt.Fprintf(out, "Options: consume=%s random=%s repeat=%s single=%s\n",
		show(s.Tracklist.Consume), show(s.Tracklist.Random), show(s.Tracklist.Repeat), show(s.Tracklist.Single))
	fmt.Fprintf(out, "Mixer:   volume=%s mute=%s\n", show(s.Mixer.Volume), show(s.Mixer.Mute))
	fmt.Fprintf(out, "State:   %s at %s ms\n", show(s.Playback.State), show(s.Playback.TimePosition))
}

// summarize renders s on one line.
func summarize(s *state.SessionState) string {
	return fmt.Sprintf("%d tracks, index %s, %s at %s ms, volume %s",
		len(s.Tracklist.URIs), show(s.Tracklist.Index), show(s.Playback.State),
		show(s.Playback.TimePosition), show(s.Mixer.Volume))
}

func show[T any](p *T) string {
	if p == nil {
		return "?"
	}
	return fmt.Sprint(*p)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			info := startup.GetBuildInfo()
			fmt.Fprintf(cmd.OutOrStdout(), "autoplayctl %s (commit %s, built %s, %s %s/%s)\n",
				info.Version, info.Commit, info.BuildTime, info.GoVersion, info.OS, info.Arch)
		},
	}
}
