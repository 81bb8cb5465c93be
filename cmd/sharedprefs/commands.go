package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/CreativeUnicorns/sharedprefs"
	"github.com/CreativeUnicorns/sharedprefs/api"
	"github.com/CreativeUnicorns/sharedprefs/screen"
)

const shutdownTimeout = 10 * time.Second

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "sharedprefs",
		Short:         "Typed key/value preferences with pluggable storage",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return applyEnvOverrides(cmd)
		},
	}
	opts.register(root)

	root.AddCommand(
		newServeCmd(opts),
		newGetCmd(opts),
		newPutCmd(opts),
		newRemoveCmd(opts),
		newListCmd(opts),
	)
	return root
}

// withManager opens a Manager for the duration of fn. Closing it commits
// every write fn issued.
func withManager(cmd *cobra.Command, opts *options, fn func(ctx context.Context, m *sharedprefs.Manager) error) (err error) {
	logger, err := opts.newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	m, err := opts.newManager(logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := m.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()
	return fn(cmd.Context(), m)
}

func newServeCmd(opts *options) *cobra.Command {
	var listenAddr, screensPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve settings screens and preferences over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table, err := loadTable(screensPath)
			if err != nil {
				return err
			}
			logger, err := opts.newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			m, err := opts.newManager(logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := m.Close(); err != nil {
					logger.Error("Failed to close preference manager", "error", err)
				}
			}()

			srv, err := api.NewServer(api.Config{
				ListenAddress: listenAddr,
				Manager:       m,
				Host:          screen.NewHost(m, table, logger),
				Logger:        logger,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, srv)
		},
	}
	cmd.Flags().StringVar(&listenAddr, "listen-addr", ":8080", "HTTP listen address")
	cmd.Flags().StringVar(&screensPath, "screens", "", "YAML file with settings screen resources")
	return cmd
}

func loadTable(path string) (*screen.Table, error) {
	if path == "" {
		return screen.NewTable()
	}
	table, err := screen.LoadResources(path)
	if err != nil {
		return nil, fmt.Errorf("loading screens: %w", err)
	}
	return table, nil
}

type server interface {
	Start() error
	Stop(ctx context.Context) error
}

// runServer blocks until ctx is done or the server fails, then shuts it down.
func runServer(ctx context.Context, srv server) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Stop(shutdownCtx)
	})
	return g.Wait()
}

func newGetCmd(opts *options) *cobra.Command {
	var typ string
	cmd := &cobra.Command{
		Use:   "get <namespace> <key>",
		Short: "Print a preference value",
		Long: "Print a preference value as JSON. Without --type the stored entry is printed as is;\n" +
			"with --type it is read through the typed accessor, which decodes non-string sets.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, opts, func(ctx context.Context, m *sharedprefs.Manager) error {
				p := m.Preferences(args[0])
				v, err := getValue(ctx, p, screen.FieldType(typ), args[1])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), v)
			})
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", "", "value type: bool, float, int, long, string or a *_set variant")
	return cmd
}

func newPutCmd(opts *options) *cobra.Command {
	var typ string
	cmd := &cobra.Command{
		Use:   "put <namespace> <key> <value...>",
		Short: "Write a preference value",
		Long: "Write a preference value. Set types take each element as a separate argument.\n" +
			"Flags go before <namespace>; everything after it is read as a value, so\n" +
			"negative numbers need no escaping: put --type long app offset -5",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, opts, func(ctx context.Context, m *sharedprefs.Manager) error {
				return putValue(ctx, m.Preferences(args[0]), screen.FieldType(typ), args[1], args[2:])
			})
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", string(screen.TypeString), "value type: bool, float, int, long, string or a *_set variant")
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func newRemoveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <namespace> <key>",
		Aliases: []string{"rm"},
		Short:   "Remove a preference",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, opts, func(ctx context.Context, m *sharedprefs.Manager) error {
				return m.Preferences(args[0]).Remove(ctx, args[1])
			})
		},
	}
}

type listedEntry struct {
	Kind      sharedprefs.Kind `json:"kind"`
	Value     any              `json:"value"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list [namespace]",
		Short: "Print every preference of a namespace as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ns := sharedprefs.DefaultNamespace
			if len(args) == 1 {
				ns = args[0]
			}
			return withManager(cmd, opts, func(ctx context.Context, m *sharedprefs.Manager) error {
				entries, err := m.Preferences(ns).All(ctx)
				if err != nil {
					return err
				}
				out := make(map[string]listedEntry, len(entries))
				for key, e := range entries {
					out[key] = listedEntry{Kind: e.Kind, Value: e.Value, UpdatedAt: e.UpdatedAt}
				}
				return printJSON(cmd.OutOrStdout(), out)
			})
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
