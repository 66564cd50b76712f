// Package commands holds the purchases-api CLI.
package commands

import (
	"purchases-api/internal/utils"

	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "purchases-api",
	Short: "Per-user purchase ledger with snapshot reconciliation",
	Long: `purchases-api serves the purchase editing API.

Example:
  purchases-api migrate
  purchases-api serve --migrate
  purchases-api token issue --user-id 7852511755`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if debug {
			log.SetLevel(log.LevelDebug)
		}
		utils.LoadConfig(cfgFile)
		// every command needs DATABASE_URL and TOKEN_SECRET
		return utils.ValidateConfig()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(tokenCmd)
}
