package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/roboricindustries/raycon-chatclient/internal/config"
	"github.com/roboricindustries/raycon-chatclient/pkg/chat"
	"github.com/roboricindustries/raycon-chatclient/pkg/dispatch"
	"github.com/roboricindustries/raycon-chatclient/pkg/gateway"
	"github.com/roboricindustries/raycon-chatclient/pkg/session"
	"github.com/spf13/cobra"
)

// roleAuditor writes one log line per deleted role or channel.
type roleAuditor struct {
	log *slog.Logger
}

func (a roleAuditor) OnRoleDelete(api chat.API, role chat.Role) {
	a.log.Info("role deleted",
		slog.String("session", api.SessionID()),
		slog.String("server_id", role.ServerID),
		slog.String("role_id", role.ID),
		slog.String("name", role.Name),
		slog.String("permissions", role.Permissions.String()),
		slog.Int("remaining_roles", len(api.Roles(role.ServerID))),
	)
}

func (a roleAuditor) OnChannelDelete(api chat.API, channel chat.Channel) {
	a.log.Info("channel deleted",
		slog.String("session", api.SessionID()),
		slog.String("server_id", channel.ServerID),
		slog.String("channel_id", channel.ID),
		slog.String("name", channel.Name),
	)
}

func newListenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "listen",
		Short: "Consume the gateway queue and log deletions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runListen(cmd.Context(), a.cfg, a.log)
		},
	}
}

func sessionOptions(cfg *config.Config, logger *slog.Logger) (session.Options, error) {
	mode, err := dispatch.ParseMode(cfg.Dispatch.Mode)
	if err != nil {
		return session.Options{}, err
	}
	return session.Options{
		ID: cfg.Session.ID,
		Dispatch: dispatch.Options{
			Mode:           mode,
			MaxConcurrency: cfg.Dispatch.MaxConcurrency,
		},
		DedupSize: cfg.Session.DedupSize,
		Logger:    logger,
	}, nil
}

func consumerOptions(cfg *config.Config) session.ConsumerOptions {
	o := session.ConsumerOptions{
		Exchange:      cfg.Gateway.Exchange,
		Queue:         cfg.Gateway.Queue,
		BindingKey:    cfg.Gateway.BindingKey,
		Prefetch:      cfg.Gateway.Prefetch,
		PoisonToFinal: cfg.Gateway.PoisonToFinal,
	}
	if cfg.Gateway.RetryEnabled {
		o.Retry = &gateway.RetrySpec{
			Enabled:     true,
			TTL:         cfg.Gateway.RetryTTL.Duration,
			MaxAttempts: cfg.Gateway.MaxAttempts,
		}
	}
	return o
}

func gatewayConfig(cfg *config.Config, logger *slog.Logger) gateway.Config {
	return gateway.Config{
		URL:                         cfg.RabbitMQ.URL,
		GatewayExchange:             cfg.Gateway.Exchange,
		Producer:                    cfg.Session.Producer,
		PublishPoolSize:             cfg.RabbitMQ.PublishPoolSize,
		ConsumerPrefetch:            cfg.Gateway.Prefetch,
		ConnTimeoutSeconds:          cfg.RabbitMQ.ConnTimeoutSeconds,
		ReconnectBackoffBaseSeconds: cfg.RabbitMQ.ReconnectBackoffBaseSeconds,
		ReconnectBackoffCapSeconds:  cfg.RabbitMQ.ReconnectBackoffCapSeconds,
		ReconnectJitterPercent:      cfg.RabbitMQ.ReconnectJitterPercent,
		Dialer: gateway.DialWithRetry(gateway.RetryOptions{
			Attempts: cfg.RabbitMQ.DialAttempts,
			Delay:    time.Second,
			Logger:   logger,
		}, nil),
	}
}

func runListen(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	opts, err := sessionOptions(cfg, logger)
	if err != nil {
		return err
	}
	sess, err := session.New(opts)
	if err != nil {
		return err
	}
	if _, err := sess.AddListener(roleAuditor{log: logger}); err != nil {
		return err
	}

	if cfg.Metrics.Addr != "" {
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: promhttp.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	client, err := gateway.NewClient(ctx, gatewayConfig(cfg, logger), logger)
	if err != nil {
		return err
	}
	defer client.Close()

	logger.Info("listening for gateway events",
		slog.String("queue", cfg.Gateway.Queue),
		slog.String("dispatch_mode", opts.Dispatch.Mode.String()),
	)
	err = client.RunWithConsumers(ctx, sess.ConsumerSpec(consumerOptions(cfg)))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
