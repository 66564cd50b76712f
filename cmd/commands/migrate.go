package commands

import (
	"purchases-api/cmd/config"
	migration "purchases-api/cmd/database/migrate"
	"purchases-api/internal/utils"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the purchases table",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := config.ConnectDB(utils.GetConfig("DATABASE_URL"))
		if err != nil {
			return err
		}
		return migration.Migrate(db)
	},
}
