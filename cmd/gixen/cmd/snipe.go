package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"jo3qma.com/gixen/internal/domain/model"
)

func newSnipeCmd(root *rootOptions) *cobra.Command {
	var opts model.SnipeOptions
	var bidOffset, bidOffsetMirror int

	c := &cobra.Command{
		Use:   "snipe ITEM MAXBID",
		Short: "Schedule a snipe on an auction item.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, logger, err := root.newUsecase()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			opts.BidOffset = model.BidOffset(bidOffset)
			opts.BidOffsetMirror = model.BidOffset(bidOffsetMirror)

			added, err := uc.PlaceSnipe(cmd.Context(), model.SnipeRequest{ItemID: args[0], MaxBid: args[1], Options: opts})
			if err != nil {
				return err
			}
			logger.Debug("snipe", zap.String("item", args[0]), zap.Bool("added", added))
			return report(cmd, added, "snipe added", "snipe not confirmed")
		},
	}
	c.Flags().IntVar(&opts.SnipeGroup, "group", 0, "snipe group (0 = no group)")
	c.Flags().IntVar(&bidOffset, "offset", 0, "seconds before end to bid: 3, 6, 8, 10 or 15 (default server setting)")
	c.Flags().IntVar(&bidOffsetMirror, "mirror-offset", 0, "bid offset for the mirror server")
	return c
}

func newUnsnipeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "unsnipe ITEM",
		Short: "Remove the snipe on an auction item.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, logger, err := root.newUsecase()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			deleted, err := uc.RemoveSnipe(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			logger.Debug("unsnipe", zap.String("item", args[0]), zap.Bool("deleted", deleted))
			return report(cmd, deleted, "snipe deleted", "delete not confirmed")
		},
	}
}

func newPurgeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Remove completed auctions from the snipe listing.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, logger, err := root.newUsecase()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			purged, err := uc.PurgeCompleted(cmd.Context())
			if err != nil {
				return err
			}
			logger.Debug("purge", zap.Bool("purged", purged))
			return report(cmd, purged, "completed snipes purged", "purge not confirmed")
		},
	}
}

func newListCmd(root *rootOptions) *cobra.Command {
	var server string

	c := &cobra.Command{
		Use:   "list",
		Short: "List scheduled snipes.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			which, err := model.ParseServer(server)
			if err != nil {
				return err
			}
			uc, logger, err := root.newUsecase()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			records, err := uc.ListSnipes(cmd.Context(), which)
			if err != nil {
				return err
			}
			logger.Debug("listed snipes", zap.Stringer("server", which), zap.Int("count", len(records)))
			return writeTable(cmd, records)
		},
	}
	c.Flags().StringVar(&server, "server", "all", "which server to list: all, main or mirror")
	return c
}

// report は確認できなかった場合もエラーにはせず、その旨を表示します
func report(cmd *cobra.Command, ok bool, yes, no string) error {
	msg := no
	if ok {
		msg = yes
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), msg)
	return err
}

func writeTable(cmd *cobra.Command, records []*model.SnipeRecord) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SERVER\tITEM\tENDS\tMAX BID\tSTATUS\tGROUP\tOFFSET\tTITLE")
	for _, r := range records {
		server := "main"
		if r.Mirror {
			server = "mirror"
		}
		ends := r.EndTime
		if t, ok := r.EndsAt(); ok {
			ends = t.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			server, r.ItemID, ends, r.MaxBid, r.StatusText, r.SnipeGroup, r.BidOffset, r.TitleText)
	}
	return w.Flush()
}
