package cmd

import (
	"github.com/spf13/cobra"
)

var deltaCmd = &cobra.Command{
	Use:   "delta <domain>",
	Short: "Compare target and buyer estates for one domain",
	Long: `Delta matches the target's dossiers against the buyer's for one
analysis domain and prints attribute-level differences, flagging vendor and
version mismatches.`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		e, err := open()
		if err != nil {
			return err
		}
		return render(e.Delta(args[0]))
	},
}

func init() {
	addOutputFlag(deltaCmd)
	rootCmd.AddCommand(deltaCmd)
}
