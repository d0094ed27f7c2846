package cmd

import (
	"github.com/spf13/cobra"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   "Check that the download manager answers on its status path",
		Aliases: []string{"ping"},
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			a.prober().Status(cmd.Context())
		},
	}
}
