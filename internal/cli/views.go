package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func addViews(topLevel *cobra.Command, g *GlobalOptions) {
	cmd := &cobra.Command{
		Use:   "views",
		Short: "List saved view settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.openStore()
			if err != nil {
				return err
			}

			var names []string
			for _, key := range s.Names(cmd.Context()) {
				if name, ok := strings.CutPrefix(key, "named:"); ok {
					names = append(names, name)
				}
			}

			out := cmd.OutOrStdout()
			if len(names) == 0 {
				_, _ = fmt.Fprintln(out, "no saved views")
				return nil
			}
			for _, name := range names {
				_, _ = fmt.Fprintln(out, name)
			}
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}
