package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bluebuchu/collect-sub000/internal/app"
	"github.com/bluebuchu/collect-sub000/internal/store"
)

func newCleanupTokensCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup-tokens",
		Short: "Delete expired password reset tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return c.withStore(ctx, func(st store.Store) error {
				svcs, err := app.NewServices(ctx, c.cfg, c.logger, st)
				if err != nil {
					return err
				}
				n, err := svcs.Auth.CleanupExpiredTokens(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "deleted %d expired reset tokens\n", n)
				return nil
			})
		},
	}
}

func newCommunitiesCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "communities",
		Short: "Community maintenance",
	}

	var clear bool
	refresh := &cobra.Command{
		Use:   "refresh-scores",
		Short: "Store the current activity score on every community",
		Long: "Computes the activity score of every community and stores it, so list\n" +
			"queries sort on the stored value. With --clear the stored scores are\n" +
			"removed and lists compute them on the fly again.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return c.withStore(ctx, func(st store.Store) error {
				svcs, err := app.NewServices(ctx, c.cfg, c.logger, st)
				if err != nil {
					return err
				}
				if clear {
					n, err := svcs.Community.ClearScores(ctx)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.out, "cleared scores of %d communities\n", n)
					return nil
				}
				n, err := svcs.Community.RefreshScores(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "refreshed scores of %d communities\n", n)
				return nil
			})
		},
	}
	refresh.Flags().BoolVar(&clear, "clear", false, "remove stored scores instead of refreshing them")

	cmd.AddCommand(refresh)
	return cmd
}
