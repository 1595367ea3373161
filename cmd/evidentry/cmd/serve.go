package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/evidentry/evidentry"
	"github.com/evidentry/evidentry/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the evidentry HTTP API",
	Long: `Serve the engagement's record store over HTTP: evidence chains,
fact dependents, dossiers, target-vs-buyer deltas, and the export gate.`,
	RunE: func(c *cobra.Command, _ []string) error {
		cfg := server.DefaultConfig()
		if host := viper.GetString("host"); host != "" {
			cfg.Host = host
		}
		if port := viper.GetInt("port"); port != 0 {
			cfg.Port = port
		}

		e, err := open(evidentry.WithServerConfig(cfg))
		if err != nil {
			return err
		}
		return e.Serve(c.Context())
	},
}

func init() {
	serveCmd.Flags().String("host", "localhost", "interface to bind")
	serveCmd.Flags().Int("port", 0, "port to listen on")
	cobra.CheckErr(viper.BindPFlag("host", serveCmd.Flags().Lookup("host")))
	cobra.CheckErr(viper.BindPFlag("port", serveCmd.Flags().Lookup("port")))

	rootCmd.AddCommand(serveCmd)
}
