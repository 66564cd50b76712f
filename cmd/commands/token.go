package commands

import (
	"errors"
	"fmt"
	"time"

	"purchases-api/internal/utils"
	"purchases-api/pkg/jwt"

	"github.com/spf13/cobra"
)

var (
	tokenUserID int64
	tokenTTL    time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage access tokens",
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Print a signed token for a user, e.g. to build a link with ?auth=",
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenUserID <= 0 {
			return errors.New("--user-id must be positive")
		}
		ttl := tokenTTL
		if ttl <= 0 {
			ttl = utils.GetDuration("TOKEN_TTL", jwt.DefaultTokenTTL)
		}

		token, err := jwt.NewJWTService(utils.GetConfig("TOKEN_SECRET"), ttl).GenerateTokenUser(tokenUserID)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenIssueCmd.Flags().Int64Var(&tokenUserID, "user-id", 0, "owner id the token is issued for")
	tokenIssueCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (default TOKEN_TTL)")
	tokenCmd.AddCommand(tokenIssueCmd)
}
