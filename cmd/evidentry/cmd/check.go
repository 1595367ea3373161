package cmd

import (
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the export readiness gate",
	Long: `Check rebuilds every dossier from the snapshot and reports whether
the record is clean enough to export: no unattributed items, conflicts
within the limit. Exits non-zero when export is blocked.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		e, err := open()
		if err != nil {
			return err
		}

		readiness := e.ExportCheck()
		if err := render(readiness); err != nil {
			return err
		}
		return readiness.Err()
	},
}

func init() {
	addOutputFlag(checkCmd)
	rootCmd.AddCommand(checkCmd)
}
