package cli

import (
	"github.com/crashkit/crashkit/pkg/collect"
	"github.com/crashkit/crashkit/pkg/doctor"
	"github.com/crashkit/crashkit/pkg/logger"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func DoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "doctor",
		Short:         "Run system health checks and save their output",
		Long:          `Run non-destructive Windows diagnostics (systeminfo, memory inventory, and optionally sfc and DISM health checks) and save each command's output next to a doctor manifest. With --bundle the output lands inside an existing bundle so it travels with the crash artifacts.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PreRun: func(cmd *cobra.Command, args []string) {
			viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viper.GetViper()

			log := logger.NewCLILogger(cmd.OutOrStdout())

			opts := doctor.Options{
				OutputDir:     v.GetString("output"),
				Bundle:        v.GetString("bundle"),
				ArtifactsRoot: v.GetString("artifacts-root"),
				RunSFC:        v.GetBool("sfc"),
				DISMScan:      v.GetBool("dism-scan"),
				DISMRestore:   v.GetBool("dism-restore"),
			}

			log.ActionWithoutSpinner("Running diagnostics")

			result, err := doctor.Run(opts, log)
			if err != nil {
				return errors.Cause(err)
			}

			log.ActionWithoutSpinner("")
			log.Info("Diagnostics written to %s", result.OutputDir)
			for _, skipped := range result.Skipped {
				log.Warning("skipped: %s", skipped)
			}
			log.ActionWithoutSpinner("")

			return nil
		},
	}

	cmd.Flags().String("output", "", "directory for diagnostic output (default: a timestamped doctor directory under the artifacts root)")
	cmd.Flags().String("bundle", "", "write diagnostics into an existing bundle instead ('latest' resolves the newest bundle)")
	cmd.Flags().String("artifacts-root", collect.DefaultArtifactsRoot, "directory that holds collected bundles")
	cmd.Flags().Bool("sfc", false, "also run 'sfc /scannow' (slow, needs an elevated shell)")
	cmd.Flags().Bool("dism-scan", false, "also run 'DISM /Online /Cleanup-Image /ScanHealth'")
	cmd.Flags().Bool("dism-restore", false, "also run 'DISM /Online /Cleanup-Image /RestoreHealth'")

	return cmd
}
