package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/shouni/visionary-gallery/internal/config"
	"github.com/shouni/visionary-gallery/internal/server"
	"github.com/shouni/visionary-gallery/pkg/service"
)

func newServeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the gallery as a JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f := cmd.Flags().Lookup("addr"); f != nil && f.Changed {
				if err := opts.v.BindPFlag("server.addr", f); err != nil {
					return err
				}
			}
			cfg, err := config.Load(opts.v)
			if err != nil {
				return err
			}
			log := setupLogger(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, log, service.ContextConfirmer, server.RequestNotifier{})
			if err != nil {
				return err
			}
			defer a.Close()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			srv := server.New(log, a.service, cfg.Server.Addr, cfg.Upload.MaxBytes, reg)

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				log.Info("停止シグナルを受信しました")
			}

			if err := srv.Stop(context.Background()); err != nil {
				return err
			}
			if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			log.Info("Gracefully stopped")
			return nil
		},
	}
	cmd.Flags().String("addr", "", "listen address (default from server.addr)")
	return cmd
}
