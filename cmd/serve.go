package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/liveserve/liveserve/internal/config"
	"github.com/liveserve/liveserve/internal/logging"
	"github.com/liveserve/liveserve/internal/server"
)

var serveCmd = &cobra.Command{
	Use:     "serve [base-dir]",
	Aliases: []string{"s"},
	Short:   "Serve a directory with live updates",
	Long: `Serve a directory over HTTP, watch it for changes, and push live
updates to connected browser tabs.

Examples:
  liveserve serve                  # Serve the current directory
  liveserve serve ./public         # Serve ./public
  liveserve serve --diff           # Targeted HTML/CSS updates
  liveserve serve --port 8000      # Explicit port, no fallback scan`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", config.DefaultPort, "Port to serve on")
	serveCmd.Flags().Bool("diff", false, "Update HTML/CSS without full page reloads")
	serveCmd.Flags().Bool("no-open", false, "Don't open browser automatically")

	bindServeFlags(serveCmd.Flags())
}

// bindServeFlags maps serve command flags onto their config keys so
// flag, env, and file values resolve through one lookup path.
func bindServeFlags(flags *pflag.FlagSet) {
	for flagName, configKey := range map[string]string{
		"port":    "server.port",
		"diff":    "server.diff",
		"no-open": "server.no_open",
	} {
		_ = viper.BindPFlag(configKey, flags.Lookup(flagName))
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if len(args) > 0 {
		cfg.Server.BaseDir = args[0]
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})

	srv, err := server.New(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info(ctx, "shutting down")
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error(ctx, err, "shutdown error")
		}
		cancel()
	}()

	printStartupSummary(cfg, srv)

	if !cfg.Server.NoOpen {
		go openBrowser(logger, srv.PrimaryURL())
	}

	return srv.Start(ctx)
}
