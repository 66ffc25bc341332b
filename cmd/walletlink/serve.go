package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	walletlink "github.com/layer-3/walletlink"
	"github.com/layer-3/walletlink/adapters/events"
	"github.com/layer-3/walletlink/adapters/store"
	httptransport "github.com/layer-3/walletlink/transport/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the wallet over HTTP with a server-sent event stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if addr != "" {
				a.cfg.HTTP.Addr = addr
			}
			return a.serve(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides http.addr")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts := []walletlink.Option{walletlink.WithRegisterer(reg)}

	if a.cfg.Events.Enabled {
		// Initialize Watermill Redis publisher
		redisClient, err := store.DialRedis(ctx, a.cfg.Events.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{
				Client: redisClient,
			},
			events.NewZerologAdapter(a.logger),
		)
		if err != nil {
			return err
		}
		opts = append(opts, walletlink.WithPublisher(publisher))
	}

	rt, err := walletlink.Build(ctx, a.cfg, a.logger, opts...)
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.Client().Initialize(ctx)

	// Setup Gin router
	router := httptransport.SetupRouter(rt.Client(), reg, a.logger)
	srv := &http.Server{
		Addr:              a.cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().Str("addr", srv.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
