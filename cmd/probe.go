package cmd

import (
	"github.com/spf13/cobra"
)

func newProbeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Send a single download request",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			payload, ok := a.payload()
			if !ok {
				return
			}
			a.prober().Send(cmd.Context(), payload)
		},
	}
}
