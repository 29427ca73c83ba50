package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/charlesng35/dairyadmin/internal/invalidation"
	"github.com/charlesng35/dairyadmin/pkg/client"
	"github.com/charlesng35/dairyadmin/pkg/logger"
)

func (c *cli) watchCmd() *cobra.Command {
	var keys []string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream server invalidations and refresh watched lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			for _, key := range keys {
				if err := c.store.Fetch(ctx, invalidation.Key(key)); err != nil {
					return err
				}
			}

			log := logger.WithModule("erpctl")
			err := c.client.Watch(ctx, func(inv client.Invalidation) {
				fmt.Fprintf(c.out, "%s: %s\n", inv.Action, strings.Join(inv.Keys, ", "))
				if err := c.store.Apply(ctx, inv); err != nil {
					log.Warn("refresh after invalidation failed", zap.String("action", inv.Action), zap.Error(err))
					return
				}
				for _, key := range keys {
					state := c.store.State(invalidation.Key(key))
					fmt.Fprintf(c.out, "  %s: %d rows (%s)\n", key, len(state.Rows), state.Status)
				}
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringSliceVar(&keys, "keys", nil, "Lists to load and keep fresh, e.g. --keys banks,roles")
	return cmd
}
