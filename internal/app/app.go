// Package app bootstraps the campaign video service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/campaignvideos/backend/internal/catalog"
	"github.com/campaignvideos/backend/internal/config"
	"github.com/campaignvideos/backend/internal/handlers"
	"github.com/campaignvideos/backend/internal/httpserver"
	"github.com/campaignvideos/backend/internal/janitor"
	"github.com/campaignvideos/backend/internal/middleware"
	"github.com/campaignvideos/backend/internal/uploads"
)

// Run dispatches the requested subcommand.
func Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("expected command: serve, seed, export, import, stats, sweep, or upload")
	}

	switch args[0] {
	case "serve":
		return serve(ctx)
	case "seed":
		return runSeed(ctx)
	case "export":
		return runExport(ctx, args[1:])
	case "import":
		return runImport(ctx, args[1:])
	case "stats":
		return runStats(ctx)
	case "sweep":
		return runSweep(ctx)
	case "upload":
		return runUpload(ctx, args[1:])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{AddSource: true, Level: lvl}))
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	slot, cleanup, err := openSlot(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	store := catalog.NewStore(slot)
	if err := store.Seed(ctx); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}

	assets, local, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}

	deps := buildDependencies(cfg, store, assets, local)

	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, deps)

	handler := middleware.RequestLogger(logger)(mux)

	srv := httpserver.New(cfg.AppPort, handler)

	var sweeper *janitor.Janitor
	if cfg.JanitorEnabled && local != nil {
		sweeper = janitor.New(store, local, cfg.JanitorMinAge, logger)
		if err := sweeper.Start(cfg.JanitorSchedule); err != nil {
			return fmt.Errorf("start upload janitor: %w", err)
		}
		defer sweeper.Stop()
	}

	logger.Info("starting http server",
		"port", cfg.AppPort,
		"catalogBackend", cfg.CatalogBackend,
		"storageBackend", cfg.StorageBackend,
	)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.Start()
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	case sig := <-signalCh:
		logger.Info("received signal, shutting down", "signal", sig.String())
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func runSeed(ctx context.Context) error {
	store, cleanup, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := store.Seed(ctx); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}

	fmt.Println("catalog seeded")
	return nil
}

func runExport(ctx context.Context, args []string) error {
	store, cleanup, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	data, err := store.ExportAll(ctx)
	if err != nil {
		return fmt.Errorf("export catalog: %w", err)
	}

	target := "campaign-videos-backup.json"
	if len(args) > 0 {
		target = args[0]
	}
	if target == "-" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}

	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("write backup %s: %w", target, err)
	}
	fmt.Printf("exported catalog to %s\n", target)
	return nil
}

func runImport(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("expected path to a backup file")
	}

	contents, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read backup %s: %w", args[0], err)
	}

	store, cleanup, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := store.ImportAll(ctx, contents); err != nil {
		return fmt.Errorf("import backup %s: %w", args[0], err)
	}

	fmt.Printf("imported catalog from %s\n", args[0])
	return nil
}

func runStats(ctx context.Context) error {
	store, cleanup, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	stats, err := store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("compute stats: %w", err)
	}

	fmt.Printf("total: %d\n", stats.Total)
	for kind, count := range stats.ByType {
		fmt.Printf("type %s: %d\n", kind, count)
	}
	for category, count := range stats.ByCategory {
		fmt.Printf("category %s: %d\n", category, count)
	}
	return nil
}

func runSweep(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.StorageBackend != config.StorageBackendLocal {
		return errors.New("sweep only applies to the local storage backend")
	}

	logger := newLogger(cfg.LogLevel)

	slot, cleanup, err := openSlot(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	store := catalog.NewStore(slot)
	_, local, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}

	removed, err := janitor.New(store, local, cfg.JanitorMinAge, logger).Sweep(ctx)
	if err != nil {
		return fmt.Errorf("sweep uploads: %w", err)
	}

	fmt.Printf("removed %d orphaned upload(s)\n", removed)
	return nil
}

func runUpload(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("expected path to a file to upload")
	}

	path := args[0]
	baseURL := "http://localhost:8080"
	if len(args) > 1 {
		baseURL = args[1]
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	client := uploads.NewClient(baseURL)
	storedName, err := client.Upload(ctx, filepath.Base(path), mimeType, file)
	if err != nil {
		return err
	}

	fmt.Printf("uploaded as %s\n", storedName)
	return nil
}

// openStore loads configuration and opens the catalog store, for the
// catalog-only subcommands.
func openStore(ctx context.Context) (*catalog.Store, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	slot, cleanup, err := openSlot(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return catalog.NewStore(slot), cleanup, nil
}
