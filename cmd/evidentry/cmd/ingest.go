package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/evidentry/evidentry"
	"github.com/evidentry/evidentry/internal/ingest"
	"github.com/evidentry/evidentry/pkg/errors"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Ingest proposal files and write the snapshot",
	Long: `Ingest reads YAML proposal files, registers the source documents they
declare, runs their fact proposals through the pipeline, and writes the
updated snapshot. An existing snapshot is restored first, so repeated runs
fold duplicates instead of storing them again.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		path := viper.GetString("snapshot")
		if path == "" {
			return errors.NewValidationError("snapshot", path, "ingest needs a snapshot path to write")
		}

		e, err := open()
		if err != nil {
			return err
		}

		report, err := runIngest(c.Context(), e, args)
		if err != nil {
			return err
		}
		if err := render(report); err != nil {
			return err
		}
		return e.Save(path)
	},
}

// runIngest loads every proposal file, registers its documents, and runs the
// resulting producers through the pipeline. A document already registered
// (typically restored from the snapshot) is left as is.
func runIngest(ctx context.Context, e evidentry.Evidentry, paths []string) (*ingest.Report, error) {
	var producers []ingest.Producer
	for _, path := range paths {
		file, err := ingest.LoadProposalFile(path)
		if err != nil {
			return nil, err
		}
		for _, doc := range file.Documents {
			if err := e.Registry().Register(doc); err != nil && !errors.Is(err, errors.ErrAlreadyExists) {
				return nil, err
			}
		}
		producers = append(producers, file.Producers()...)
	}
	return e.Ingest(ctx, producers...)
}

func init() {
	addOutputFlag(ingestCmd)
	rootCmd.AddCommand(ingestCmd)
}
