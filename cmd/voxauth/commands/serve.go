package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/voxauth/voxauth/internal/httpd"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Run the voxauth HTTP API.

Endpoints:
  POST   /api/voice/register      multipart: name + 1-5 audio samples
  POST   /api/voice/identify      multipart: 1 audio probe
  POST   /api/voice/verify        multipart: name + 1 audio probe
  GET    /api/voice/users
  DELETE /api/voice/users/{name}
  GET    /health`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serveListen != "" {
			cfg.Listen = serveListen
		}
		log := newLogger(cfg)

		svc, err := openService(cfg, log)
		if err != nil {
			return err
		}
		defer svc.Close()

		srv := httpd.New(httpd.Config{
			Addr:           cfg.Listen,
			Service:        svc,
			Logger:         log,
			AllowedOrigins: cfg.AllowedOrigins,
		})

		errCh := make(chan error, 1)
		go func() {
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		select {
		case err := <-errCh:
			return err
		case sig := <-stop:
			log.Info().Str("signal", sig.String()).Msg("shutting down")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
