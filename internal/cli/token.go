package cli

import (
	"errors"
	"fmt"
	"puspa_backend/internal/util"
	"time"

	"github.com/spf13/cobra"
)

// newTokenCommand 为本地开发签发令牌，生产环境令牌由诊所认证服务签发
func newTokenCommand(opts *options) *cobra.Command {
	var (
		userID uint
		role   string
		email  string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development JWT signed with the configured secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.Server.Mode == "release" {
				return errors.New("token issuing is disabled in release mode")
			}
			if cfg.JWT.Secret == "" {
				return errors.New("jwt.secret is not configured")
			}

			tok, err := util.GenerateJWT(userID, role, email, cfg.JWT.Secret, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().UintVar(&userID, "user", 1, "user id")
	cmd.Flags().StringVar(&role, "role", "orangtua", "role claim")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
