// Package cli implements the tableview command line tool.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/tableview/internal/logging"
	"github.com/JonMunkholm/tableview/internal/store"
)

// GlobalOptions are flags shared by every subcommand.
type GlobalOptions struct {
	StorePath string
	LogLevel  string
}

// New returns the root command.
func New() *cobra.Command {
	g := &GlobalOptions{}

	cmd := &cobra.Command{
		Use:          "tableview",
		Short:        "Sort, filter and group tabular files on the command line.",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupWriter(cmd.ErrOrStderr(), g.LogLevel, "text")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().StringVar(&g.StorePath, "store", "~/.tableview", "Directory holding saved views.")
	cmd.PersistentFlags().StringVar(&g.LogLevel, "log-level", "warn", "Log level: debug, info, warn, error.")

	addShow(cmd, g)
	addViews(cmd, g)
	return cmd
}

func (g *GlobalOptions) openStore() (*store.Store, error) {
	return store.Open(g.StorePath, 1<<20)
}
