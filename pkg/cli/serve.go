package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	httpctrl "github.com/secmon-lab/lifeguide/pkg/controller/http"
	"github.com/secmon-lab/lifeguide/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var rateLimit float64
	var rateBurst int
	var maxBodyBytes int64
	var cfg runtimeConfig

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("LIFEGUIDE_ADDR"),
			Destination: &addr,
		},
		&cli.FloatFlag{
			Name:        "rate-limit",
			Usage:       "Requests per second accepted on POST /chat (0 disables the limit)",
			Value:       5,
			Category:    "HTTP",
			Sources:     cli.EnvVars("LIFEGUIDE_RATE_LIMIT"),
			Destination: &rateLimit,
		},
		&cli.IntFlag{
			Name:        "rate-burst",
			Usage:       "Burst size of the POST /chat rate limit",
			Value:       10,
			Category:    "HTTP",
			Sources:     cli.EnvVars("LIFEGUIDE_RATE_BURST"),
			Destination: &rateBurst,
		},
		&cli.Int64Flag{
			Name:        "max-body-bytes",
			Usage:       "Maximum size of a POST /chat request body",
			Value:       httpctrl.DefaultMaxBodyBytes,
			Category:    "HTTP",
			Sources:     cli.EnvVars("LIFEGUIDE_MAX_BODY_BYTES"),
			Destination: &maxBodyBytes,
		},
	}
	flags = append(flags, cfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, closer, err := cfg.build(ctx)
			if err != nil {
				return err
			}
			defer closer()

			httpHandler := httpctrl.New(uc.Chat, uc.Sessions,
				httpctrl.WithRateLimit(rateLimit, rateBurst),
				httpctrl.WithMaxBodyBytes(maxBodyBytes),
			)
			server := &http.Server{
				Addr:              addr,
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
