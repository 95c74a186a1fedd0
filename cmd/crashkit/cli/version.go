package cli

import (
	"encoding/json"
	"fmt"

	"github.com/crashkit/crashkit/pkg/version"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

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

			if output == "json" {
				b, err := json.MarshalIndent(version.GetBuild(), "", "  ")
				if err != nil {
					return errors.Wrap(err, "failed to marshal build info")
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}
			if output != "" {
				return errors.Errorf("output format %s not supported (allowed: json)", output)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "crashkit %s\n", version.Version())
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "output format (currently supported: json)")

	return cmd
}
