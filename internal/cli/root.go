package cli

import (
	"puspa_backend/internal/config"

	"github.com/spf13/cobra"
)

// Version 构建时通过 -ldflags 注入
var Version = "dev"

type options struct {
	configDir string
}

func (o *options) load() (*config.Config, error) {
	return config.LoadConfig(o.configDir)
}

// NewRootCommand 不带子命令时直接启动服务
func NewRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "puspa",
		Short: "PUSPA assessment service",
		Long: `Serves the PUSPA clinic assessment forms: loads question schemas,
keeps in-progress answers per session, submits them to the clinic backend
and rebuilds submitted answers for review.`,
		Version:      Version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}
	cmd.PersistentFlags().StringVarP(&opts.configDir, "config", "c", "configs", "directory containing config.yaml")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newSchemaCommand(opts))
	cmd.AddCommand(newTokenCommand(opts))

	return cmd
}
