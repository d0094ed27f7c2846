package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tanq16/dlprobe/internal/scheduler"
)

func newCampaignCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "campaign [--attempts N] [--delay D]",
		Short:   "Send the same download request several times in a row",
		Aliases: []string{"repeat"},
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			payload, ok := a.payload()
			if !ok {
				return
			}
			scheduler.Run(cmd.Context(), a.prober(), payload, a.campaign())
		},
	}
}
