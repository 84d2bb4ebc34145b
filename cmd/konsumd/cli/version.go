package cli

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via -ldflags.
var version = "unreleased"

type VersionOutput struct {
	Version string `json:"version"`
}

func VersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the current version and exit",
		Long:  `Print the current version and exit`,
		PreRun: func(cmd *cobra.Command, args []string) {
			viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			output := viper.GetString("output")

			switch output {
			case "json":
				data, err := json.MarshalIndent(VersionOutput{Version: version}, "", "  ")
				if err != nil {
					return errors.Wrap(err, "failed to marshal version output")
				}
				fmt.Println(string(data))
			case "":
				fmt.Printf("konsumd %s\n", version)
			default:
				return errors.Errorf("output format %s not supported (allowed formats are: json)", output)
			}

			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "output format (currently supported: json)")

	return cmd
}
