package cli

import (
	"fmt"
	"io/ioutil"

	"github.com/crashkit/crashkit/pkg/bundle"
	"github.com/crashkit/crashkit/pkg/collect"
	"github.com/crashkit/crashkit/pkg/logger"
	"github.com/crashkit/crashkit/pkg/summarize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func SummarizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "summarize [bundle-dir]",
		Short:         "Parse a bundle and write its triage summary",
		Long:          `Parse the WER reports in a collected bundle, cluster them by crash signature, and write summary.json and summary.txt. Without an argument the newest bundle under the artifacts root is summarized.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PreRun: func(cmd *cobra.Command, args []string) {
			viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viper.GetViper()

			log := logger.NewCLILogger(cmd.OutOrStdout())
			if v.GetBool("json") {
				log.Silence()
			}

			bundleDir := ""
			if len(args) > 0 {
				bundleDir = args[0]
			} else {
				latest, err := bundle.Latest(v.GetString("artifacts-root"))
				if err != nil {
					if errors.Is(err, bundle.ErrNotFound) {
						return errors.Errorf("no bundles found under %s, run 'crashkit collect' first", v.GetString("artifacts-root"))
					}
					return errors.Cause(err)
				}
				bundleDir = latest
			}

			log.ActionWithoutSpinner("Summarizing %s", bundleDir)

			result, err := summarize.Summarize(bundleDir, v.GetString("output"), log)
			if err != nil {
				if errors.Is(err, bundle.ErrNotFound) {
					return errors.Errorf("%s is not a collected bundle", bundleDir)
				}
				return errors.Cause(err)
			}

			outFile := result.SummaryText
			if v.GetBool("json") {
				outFile = result.SummaryJSON
			}
			b, err := ioutil.ReadFile(outFile)
			if err != nil {
				return errors.Wrap(err, "failed to read summary")
			}

			log.ActionWithoutSpinner("")
			fmt.Fprint(cmd.OutOrStdout(), string(b))

			return nil
		},
	}

	cmd.Flags().String("artifacts-root", collect.DefaultArtifactsRoot, "directory that holds collected bundles")
	cmd.Flags().String("output", "", "directory for summary.json and summary.txt (default: the bundle itself)")
	cmd.Flags().Bool("json", false, "print the json summary instead of the text summary")

	return cmd
}
