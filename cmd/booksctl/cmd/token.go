package cmd

import (
	"fmt"
	"time"

	"github.com/SscSPs/prompt_books/internal/core/domain"
	"github.com/SscSPs/prompt_books/internal/middleware"
	"github.com/SscSPs/prompt_books/internal/platform/config"
	"github.com/spf13/cobra"
)

var (
	tokenTenant string
	tokenUser   string
	tokenRole   string
	tokenTTL    time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue API tokens",
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Sign a bearer token for an actor",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		role := domain.Role(tokenRole)
		if !role.IsValid() {
			return fmt.Errorf("unknown role %q", tokenRole)
		}
		ttl := tokenTTL
		if ttl <= 0 {
			ttl = cfg.JWTExpiryDuration
		}
		token, err := middleware.GenerateActorToken(domain.Actor{
			TenantID: tokenTenant,
			UserID:   tokenUser,
			Role:     role,
		}, cfg.JWTSecret, cfg.JWTIssuer, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenIssueCmd.Flags().StringVar(&tokenTenant, "tenant", "", "tenant the token is scoped to")
	tokenIssueCmd.Flags().StringVar(&tokenUser, "user", "", "user id (sub claim)")
	tokenIssueCmd.Flags().StringVar(&tokenRole, "role", string(domain.RoleAccountant), "ADMIN, ACCOUNTANT, MEMBER or READONLY")
	tokenIssueCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (default JWT_EXPIRY_DURATION)")
	_ = tokenIssueCmd.MarkFlagRequired("tenant")
	_ = tokenIssueCmd.MarkFlagRequired("user")
	tokenCmd.AddCommand(tokenIssueCmd)
}
