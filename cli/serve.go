package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ghostconf/api"
	"ghostconf/kv"
	"ghostconf/logging"
	"ghostconf/preset"
	"ghostconf/schema"
	"ghostconf/session"
)

const shutdownTimeout = 5 * time.Second

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and try-out shells",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from settings, :8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		s.Addr = serveAddr
	}
	logging.Setup(verbose || logging.ParseLevel(s.Log.Level), jsonOutput || s.Log.JSON, os.Stderr)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := s.OpenStore()
	if err != nil {
		return err
	}
	defer closeStore()

	cat := newCatalog(s)
	cat.RefreshAsync(ctx)

	presets := preset.NewManager(store, cat)
	if fs, ok := store.(*kv.FileStore); ok && s.Watch {
		if err := kv.Watch(ctx, fs, preset.StorageKey, presets.Reload); err != nil {
			logging.Warn("watching preset store failed", "dir", fs.Dir(), "err", err)
		}
	}

	sessions := session.NewManager()
	defer sessions.KillAll()

	srv := &http.Server{
		Addr: s.Addr,
		Handler: api.RegisterRoutes(api.Deps{
			Schema:   schema.Ghostty,
			Presets:  presets,
			Sessions: sessions,
			Catalog:  cat,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logging.Info("ghostconf listening", "addr", s.Addr, "storage", s.Storage, "data_dir", s.DataDir)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logging.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
