package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newReindexCmd(flags *storeFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Recompute search tokens for every profile",
		Long: `Rewrite the search tokens and name index entry of every stored
profile. Run after changing tokenization rules.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := flags.connect(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			n, err := client.Profiles().Reindex(ctx)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "reindexed %d profiles\n", n)
			return err
		},
	}
}
