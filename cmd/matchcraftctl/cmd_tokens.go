package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/matchcraft/internal/domain/search/tokens"
)

func newTokensCmd() *cobra.Command {
	var f tokens.Fields

	cmd := &cobra.Command{
		Use:   "tokens [display name]",
		Short: "Show the search tokens for profile fields",
		Long: `Print the prefix tokens a profile with the given fields is indexed
under, one per line in sorted order. Positional arguments are joined into
the display name.`,
		Example: `  matchcraftctl tokens Priya Sharma --profession Doctor --location "Pune, India"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				f.DisplayName = strings.Join(args, " ")
			}
			out := cmd.OutOrStdout()
			for _, t := range tokens.Generate(f).Sorted() {
				if _, err := fmt.Fprintln(out, t); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&f.Profession, "profession", "", "profession")
	cmd.Flags().StringVar(&f.Location, "location", "", "location, comma separated parts")
	cmd.Flags().StringVar(&f.Bio, "bio", "", "bio text")
	return cmd
}
