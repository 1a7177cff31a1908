package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ronmurphy/window-manager-electron-sub001/internal/infrastructure/config"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/infrastructure/logging"
	"github.com/ronmurphy/window-manager-electron-sub001/internal/infrastructure/server"
)

type options struct {
	configFile string
	ephemeral  bool
	logLevel   string
}

// NewRootCmd builds the widget-shell command tree
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "widget-shell",
		Short: "Widget registry and launcher for the desktop overlay shell",
		Long: `widget-shell keeps the registry of installed widgets and launchable
modules, persists it to a local JSON store and serves it to the shell UI
over HTTP and a WebSocket stream.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "TOML config file overlaying the environment")
	root.PersistentFlags().BoolVar(&opts.ephemeral, "ephemeral", false, "Keep the store in memory only")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override the configured log level")

	root.AddCommand(
		newServeCmd(opts),
		newImportCmd(opts),
		newListCmd(opts),
		newCleanupCmd(opts),
		newResetCmd(opts),
	)
	return root
}

// execute runs cmd and reports any error on its error stream. Returns the
// process exit code.
func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		cmd.PrintErrln("Error:", err)
		return 1
	}
	return 0
}

// open loads the configuration and builds a booted-but-idle server
func open(opts *options, quiet bool) (*server.Server, *config.Config, *logging.Logger, error) {
	cfg, err := config.LoadWithFile(opts.configFile)
	if err != nil {
		return nil, nil, nil, err
	}
	if opts.ephemeral {
		cfg.Store.Ephemeral = true
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	} else if quiet {
		cfg.Logging.Level = "warn"
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		_ = logger.Close()
		return nil, nil, nil, err
	}
	return srv, cfg, logger, nil
}

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Load the registry, auto-start widgets and serve the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, cfg, logger, err := open(opts, false)
			if err != nil {
				return err
			}
			defer logger.Close()
			defer srv.Close()

			ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv.Boot(ctx)
			logger.Info("Widget shell ready", zap.String("addr", cfg.Addr()))
			return srv.Run(ctx)
		},
	}
}

func newImportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import <folder>",
		Short: "Import every widget directory below a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, _, logger, err := open(opts, true)
			if err != nil {
				return err
			}
			defer logger.Close()
			defer srv.Close()

			ctx := cmdContext(cmd)
			srv.Registry().Load(ctx)
			result, err := srv.Registry().ImportFromFolder(ctx, args[0])
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			for _, rec := range result.Added {
				fmt.Fprintf(out, "added   %s  %s\n", rec.ID, rec.Name)
			}
			for _, name := range result.Skipped {
				fmt.Fprintf(out, "skipped %s\n", name)
			}
			fmt.Fprintf(out, "%d widget(s) imported from %s\n", len(result.Added), result.Folder)
			return nil
		},
	}
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered widgets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, _, logger, err := open(opts, true)
			if err != nil {
				return err
			}
			defer logger.Close()
			defer srv.Close()

			srv.Registry().Load(cmdContext(cmd))

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tAUTOLOAD\tPATH")
			for _, rec := range srv.Registry().Records() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n",
					rec.ID, rec.Name, rec.Category, rec.Settings.Autoload, rec.Path)
			}
			return tw.Flush()
		},
	}
}

func newCleanupCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Collapse duplicate widget records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, _, logger, err := open(opts, true)
			if err != nil {
				return err
			}
			defer logger.Close()
			defer srv.Close()

			ctx := cmdContext(cmd)
			srv.Registry().Load(ctx)
			report := srv.Controller().Cleanup(ctx)

			out := cmd.OutOrStdout()
			for _, rec := range report.Removed {
				fmt.Fprintf(out, "removed %s  %s\n", rec.ID, rec.Name)
			}
			fmt.Fprintf(out, "%d duplicate(s) removed\n", len(report.Removed))
			return nil
		},
	}
}

func newResetCmd(opts *options) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Remove every widget and module from the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("reset deletes the whole registry, pass --yes to confirm")
			}
			srv, _, logger, err := open(opts, true)
			if err != nil {
				return err
			}
			defer logger.Close()
			defer srv.Close()

			if !srv.Registry().Reset(cmdContext(cmd)) {
				return fmt.Errorf("registry could not be reset")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "registry reset")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the reset")
	return cmd
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
