package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/synthfhir/synthfhir/internal/platform/blobstore"
	"github.com/synthfhir/synthfhir/internal/platform/devserver"
)

func devserverCmd(a *app) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Run a stand-in backend that serves placeholder records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port == "" {
				port = a.cfg.DevServerPort
			}
			files, err := blobstore.NewDiskStore(a.cfg.DevServerOutputDir)
			if err != nil {
				return err
			}
			srv := devserver.New(devserver.Options{
				Files:                  files,
				CORSOrigins:            a.cfg.CORSOrigins,
				EnterpriseBaseURL:      a.cfg.EnterpriseBaseURL,
				EnterpriseClientID:     a.cfg.EnterpriseClientID,
				EnterpriseClientSecret: a.cfg.EnterpriseClientSecret,
			}, a.logger)

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start(":" + port)
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			select {
			case err := <-errCh:
				return err
			case <-quit:
			case <-cmd.Context().Done():
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				return err
			}
			a.logger.Info().Msg("dev server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "Listen port (default: DEVSERVER_PORT)")
	return cmd
}
