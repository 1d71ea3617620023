package main

import (
	"cmp"
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	glog "github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"pagesort/pkg/server"
	"pagesort/pkg/sorter"
)

func newServeCmd() *cobra.Command {
	var (
		port    string
		workers int
		maxBody string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the page ordering API",
		Example: `  # Start on the default port with the provider found in the environment
  pagesort serve

  # Custom port and more job workers
  pagesort serve --port 3000 --workers 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			srv := server.NewServer(ctx, sorter.NewFromEnv(ctx), server.Config{
				Workers: workers,
				MaxBody: maxBody,
			})
			srv.Echo.Logger.SetLevel(glog.INFO)
			if log.GetLevel() <= log.DebugLevel {
				srv.Echo.Logger.SetLevel(glog.DEBUG)
			}

			finishedShutDown := make(chan struct{})
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					log.Error("server shutdown failed", "error", err)
				}
				close(finishedShutDown)
			}()

			if err := srv.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			<-finishedShutDown
			log.Info("server stopped")
			return nil
		},
	}

	workersDefault, _ := strconv.Atoi(os.Getenv("SORT_WORKERS"))
	cmd.Flags().StringVarP(&port, "port", "p", cmp.Or(os.Getenv("PORT"), "8080"), "Port to listen on")
	cmd.Flags().IntVarP(&workers, "workers", "w", cmp.Or(workersDefault, 2), "Workers running queued sort jobs")
	cmd.Flags().StringVar(&maxBody, "max-body", cmp.Or(os.Getenv("MAX_BODY"), "64M"), "Maximum request body size")

	return cmd
}
