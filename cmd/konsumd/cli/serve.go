package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/konsumhq/konsum/pkg/apiserver"
	"github.com/konsumhq/konsum/pkg/logger"
)

func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "serve",
		Short:         "Start the gateway",
		Long:          `Start the gateway and block until it is stopped`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PreRun: func(cmd *cobra.Command, args []string) {
			viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viper.GetViper()

			if v.GetBool("debug") {
				logger.SetDebug()
			}

			params := &apiserver.APIServerParams{
				Version:    version,
				ConfigFile: v.GetString("config"),
			}

			return apiserver.Start(params)
		},
	}

	cmd.Flags().StringP("config", "c", "", "path to the configuration file")
	cmd.Flags().Bool("debug", false, "log every request, not just failures")

	return cmd
}
