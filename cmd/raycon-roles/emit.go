package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roboricindustries/raycon-chatclient/pkg/chat"
	"github.com/roboricindustries/raycon-chatclient/pkg/gateway"
	"github.com/roboricindustries/raycon-chatclient/pkg/schemas/common"
	guild "github.com/roboricindustries/raycon-chatclient/pkg/schemas/guild/v1"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

type roleDeleteFlags struct {
	serverID    string
	roleID      string
	name        string
	permissions uint64
	count       int
	perSecond   float64
	dryRun      bool
}

func newEmitCmd(a *app) *cobra.Command {
	emit := &cobra.Command{
		Use:   "emit",
		Short: "Publish gateway events, for testing consumers",
	}
	emit.AddCommand(newEmitRoleDeleteCmd(a))
	return emit
}

func newEmitRoleDeleteCmd(a *app) *cobra.Command {
	f := &roleDeleteFlags{}
	cmd := &cobra.Command{
		Use:   "role-delete",
		Short: "Publish roles.deleted.v1",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var pub gateway.Publisher
			if f.dryRun {
				pub = gateway.NewFallback(a.log)
			} else {
				client, err := gateway.NewClient(cmd.Context(), gatewayConfig(a.cfg, a.log), a.log)
				if err != nil {
					return err
				}
				defer client.Close()
				pub = confirmedPublisher{client}
			}
			return emitRoleDeletes(cmd.Context(), pub, a.cfg.Session.Producer, *f, a.log)
		},
	}
	cmd.Flags().StringVar(&f.serverID, "server", "", "server ID (required)")
	cmd.Flags().StringVar(&f.roleID, "role", "", "role ID (required)")
	cmd.Flags().StringVar(&f.name, "name", "", "attach a role snapshot with this name")
	cmd.Flags().Uint64Var(&f.permissions, "permissions", 0, "permission bits of the attached snapshot")
	cmd.Flags().IntVar(&f.count, "count", 1, "number of distinct events to publish")
	cmd.Flags().Float64Var(&f.perSecond, "rate", 10, "events per second when count > 1")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "log instead of publishing")
	_ = cmd.MarkFlagRequired("server")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

// confirmedPublisher waits for broker confirms on every publish.
type confirmedPublisher struct {
	client *gateway.Client
}

func (p confirmedPublisher) Publish(ctx context.Context, em common.EventMeta, env common.Envelope) error {
	return p.client.PublishConfirmed(ctx, em, env)
}

func roleDeletedEvent(f roleDeleteFlags) guild.RoleDeletedV1 {
	ev := guild.RoleDeletedV1{
		Server: guild.ServerRef{ServerID: f.serverID},
		RoleID: f.roleID,
	}
	if f.name != "" {
		snap := guild.SnapshotOf(chat.Role{
			ID:          f.roleID,
			ServerID:    f.serverID,
			Name:        f.name,
			Permissions: chat.Permissions(f.permissions),
		})
		ev.Role = &snap
	}
	return ev
}

func emitRoleDeletes(ctx context.Context, pub gateway.Publisher, producer string, f roleDeleteFlags, logger *slog.Logger) error {
	ev := roleDeletedEvent(f)
	if err := ev.Validate(); err != nil {
		return err
	}
	if f.count <= 0 {
		f.count = 1
	}
	limit := rate.Inf
	if f.perSecond > 0 {
		limit = rate.Limit(f.perSecond)
	}
	limiter := rate.NewLimiter(limit, 1)
	for i := 0; i < f.count; i++ {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		env := common.Wrap(guild.RoleDeletedMeta, producer, ev)
		if err := pub.Publish(ctx, guild.RoleDeletedMeta, env); err != nil {
			return fmt.Errorf("publish %d/%d: %w", i+1, f.count, err)
		}
		logger.Info("published",
			slog.String("key", guild.RoleDeletedMeta.RoutingKey),
			slog.String("id", env.Meta.ID),
			slog.String("role_id", ev.RoleID),
		)
	}
	return nil
}
