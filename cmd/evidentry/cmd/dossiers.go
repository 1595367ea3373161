package cmd

import (
	"github.com/spf13/cobra"

	"github.com/evidentry/evidentry/pkg/records"
)

var dossierEntity string

var dossiersCmd = &cobra.Command{
	Use:   "dossiers <domain>",
	Short: "Print the dossiers for one analysis domain",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		e, err := open()
		if err != nil {
			return err
		}

		if dossierEntity != "" {
			entity, err := records.ParseEntity(dossierEntity, "--entity flag")
			if err != nil {
				return err
			}
			return render(e.Dossiers(args[0], entity))
		}
		return render(e.Dossiers(args[0]))
	},
}

func init() {
	dossiersCmd.Flags().StringVar(&dossierEntity, "entity", "", "restrict to one entity (target or buyer)")
	addOutputFlag(dossiersCmd)
	rootCmd.AddCommand(dossiersCmd)
}
