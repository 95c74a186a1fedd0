package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crashkit",
		Short: "Collect and summarize Windows crash diagnostics",
		Long: `crashkit gathers the artifacts Windows leaves behind after crashes and
freezes (WER report folders, LiveKernelReports dumps, minidumps, event logs)
into a portable bundle, and condenses the bundle into a triage summary.`,
		PreRun: func(cmd *cobra.Command, args []string) {
			viper.BindPFlags(cmd.Flags())
		},
	}

	cobra.OnInitialize(initConfig)

	cmd.AddCommand(CollectCmd())
	cmd.AddCommand(SummarizeCmd())
	cmd.AddCommand(DoctorCmd())
	cmd.AddCommand(VersionCmd())

	viper.BindPFlags(cmd.Flags())

	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	return cmd
}

func InitAndExecute() {
	if err := RootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("CRASHKIT")
	viper.AutomaticEnv()
}
