package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/syntaxis/am"
	"github.com/teranos/syntaxis/errors"
	"github.com/teranos/syntaxis/logger"
	"github.com/teranos/syntaxis/server"
	"github.com/teranos/syntaxis/storage"
)

// ServeCmd starts the HTTP and WebSocket service
var ServeCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"server"},
	Short:   "Start the syntaxis HTTP and WebSocket service",
	Long: `Serve template generation over HTTP and WebSocket.

Routes:
  POST   /api/v1/generate                  {"template": "...", "count": N}
  GET    /api/v1/templates                 saved templates
  POST   /api/v1/templates                 {"template": "...", "description": "..."}
  GET    /api/v1/templates/{id}
  DELETE /api/v1/templates/{id}
  POST   /api/v1/templates/{id}/generate
  GET    /api/v1/features                  template vocabulary
  GET    /api/v1/lexicon/stats
  GET    /health
  GET    /ws/generate                      one response per {"template": ...} message

Edits to the am.toml the server loaded are applied without a restart
(allowed origins, rate limit, batch limit).`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	servePort       int
	serveWatchSeeds bool
)

func init() {
	ServeCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides server.port)")
	ServeCmd.Flags().BoolVar(&serveWatchSeeds, "watch-seeds", false, "Re-import seed files from lexicon.seed_paths when they change")
}

func runServe(cmd *cobra.Command, args []string) error {
	verbosity, _ := cmd.Flags().GetCount("verbose")
	if verbosity == 0 {
		// Info by default so request summaries and reloads are visible
		verbosity = logger.VerbosityInfo
		jsonLogs, _ := cmd.Flags().GetBool("log-json")
		if err := logger.Initialize(jsonLogs, logger.VerbosityToLevel(verbosity)); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
	}

	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	if cfg.Server.LogTheme != "" {
		logger.SetTheme(cfg.Server.LogTheme)
	}
	if logger.ShouldLogTrace(verbosity) {
		cfg.Generator.LogOverrides = true
	}

	database, dbPath, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	srv, err := server.New(database, cfg)
	if err != nil {
		return errors.Wrap(err, "failed to create server")
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := srv.Lexicon().CountWords(ctx)
	if err != nil {
		return err
	}
	if stats.Total == 0 {
		pterm.Warning.Println("The lexicon is empty; every generation will fail until 'syntaxis db seed' runs")
	}

	if files := am.LoadedFiles(); len(files) > 0 {
		// the highest-precedence file is the one users edit
		configPath := files[len(files)-1]
		cw, err := am.NewConfigWatcher(configPath)
		if err != nil {
			logger.Warnw("Config hot reload disabled", logger.FieldFile, configPath, logger.FieldError, err)
		} else {
			cw.OnReload(func(newCfg *am.Config) error {
				srv.ApplyConfig(newCfg)
				return nil
			})
			cw.Start()
			defer cw.Stop()
		}
	}

	if serveWatchSeeds || cfg.Lexicon.WatchSeeds {
		sw, err := startSeedWatcher(srv.Lexicon(), cfg.Lexicon.SeedPaths)
		if err != nil {
			return err
		}
		defer sw.Stop()
	}

	addr := cfg.GetServerAddress()
	printStartupBanner(verbosity, dbPath, addr, stats.Total)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.ListenAndServe(ctx, addr)
	}()

	select {
	case err := <-errChan:
		return errors.Wrap(err, "server stopped unexpectedly")
	case <-ctx.Done():
		pterm.Info.Println("Shutting down gracefully...")
	}

	if err := <-errChan; err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	srv.Wait()
	pterm.Success.Println("Server stopped cleanly")
	return nil
}

func startSeedWatcher(lexicon *storage.LexiconStore, paths []string) (*storage.SeedWatcher, error) {
	if len(paths) == 0 {
		return nil, errors.WithHint(errors.New("--watch-seeds needs seed paths"),
			"set lexicon.seed_paths in am.toml")
	}
	sw, err := storage.NewSeedWatcher(lexicon, paths)
	if err != nil {
		return nil, err
	}
	sw.OnImport(func(path string, count int, err error) {
		if err != nil {
			pterm.Error.Printf("Seed %s rejected: %v\n", path, err)
			return
		}
		pterm.Success.Printf("Re-imported %d words from %s\n", count, path)
	})
	sw.Start()
	return sw, nil
}
