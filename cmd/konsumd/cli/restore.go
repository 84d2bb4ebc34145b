package cli

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/konsumhq/konsum/pkg/config"
	"github.com/konsumhq/konsum/pkg/store/sqlitestore"
)

func RestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "restore [backup file]",
		Short:         "Ingest a backup file into the database",
		Long:          `Ingest a text backup, previously produced by GET /admin/backup, into the configured database`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PreRun: func(cmd *cobra.Command, args []string) {
			viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viper.GetViper()

			if len(args) != 1 {
				cmd.Help()
				os.Exit(1)
			}

			cfg, err := config.Load(v.GetString("config"))
			if err != nil {
				return errors.Wrap(err, "failed to load config")
			}

			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrapf(err, "failed to open backup file %s", args[0])
			}
			defer f.Close()

			st, err := sqlitestore.Open(cfg.Database.Path)
			if err != nil {
				return errors.Wrapf(err, "failed to open store %s", cfg.Database.Path)
			}
			defer st.Close()

			if err := st.Restore(cmd.Context(), f); err != nil {
				return errors.Wrap(err, "failed to restore backup")
			}

			fmt.Printf("restored %s into %s\n", args[0], cfg.Database.Path)

			return nil
		},
	}

	cmd.Flags().StringP("config", "c", "", "path to the configuration file")

	return cmd
}
