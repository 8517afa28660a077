package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pysugar/drivelink/internal/auth/session"
	"github.com/pysugar/drivelink/internal/server"
	"github.com/pysugar/drivelink/internal/version"
	"github.com/spf13/cobra"
)

var (
	configPath string
	tgID       string
	force      bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "drivelink",
	Short:        "Telegram bot backend for browsing a linked Google Drive",
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		botKey, err := a.store.BotAPIKey(a.cfg.Bot.APIKey)
		if err != nil {
			return fmt.Errorf("loading bot API key: %w", err)
		}

		handler := server.NewRouter(server.Deps{
			Config:    a.cfg,
			Store:     a.store,
			Service:   a.service,
			Sessions:  session.NewManager(a.cfg.Session),
			Refresher: a.refresher,
			BotAPIKey: botKey,
		})

		srv := &http.Server{
			Addr:              a.cfg.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			log.Printf("🚀 drivelink %s starting on http://%s", version.Version, srv.Addr)
			log.Printf("🔑 Google sign-in: http://%s/auth/google/login", srv.Addr)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		log.Printf("🛑 Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Refresh the local file index of the owner linked to --tg-id",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.service.Sync(cmd.Context(), tgID, force)
		if err != nil {
			return err
		}
		if result.Skipped {
			return printJSON(map[string]interface{}{"skipped": true, "lastSync": result.LastSync})
		}
		return printJSON(map[string]interface{}{"total": result.Total})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count folders, PDFs, images and videos of the owner linked to --tg-id",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.service.Stats(cmd.Context(), tgID, force)
		if err != nil {
			return err
		}
		return printJSON(map[string]interface{}{
			"counts":    result.Counts,
			"updatedAt": result.UpdatedAt,
			"cached":    result.Cached,
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("drivelink " + version.String())
	},
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	defaultConfig := os.Getenv("DRIVELINK_CONFIG")
	if defaultConfig == "" {
		defaultConfig = "config.yaml"
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfig, "path to the YAML config file")

	for _, cmd := range []*cobra.Command{syncCmd, statsCmd} {
		cmd.Flags().StringVar(&tgID, "tg-id", "", "Telegram id of the owner or a member")
		cmd.Flags().BoolVar(&force, "force", false, "ignore the sync interval or stats cache")
		cmd.MarkFlagRequired("tg-id")
	}

	rootCmd.AddCommand(serveCmd, syncCmd, statsCmd, versionCmd)
}
