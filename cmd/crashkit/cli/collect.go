package cli

import (
	"encoding/json"
	"fmt"

	"github.com/crashkit/crashkit/pkg/bundle"
	"github.com/crashkit/crashkit/pkg/collect"
	"github.com/crashkit/crashkit/pkg/logger"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func CollectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "collect",
		Short:         "Collect crash artifacts into a timestamped bundle",
		Long:          `Collect the most recent WER report folders, LiveKernelReports dumps, minidumps and event log exports into a new bundle directory, and write a manifest describing exactly what was copied and what was skipped.`,
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

			opts := collect.Options{
				OutputDir:         v.GetString("output"),
				ArtifactsRoot:     v.GetString("artifacts-root"),
				LatestN:           v.GetInt("latest"),
				LatestLiveKernel:  v.GetInt("latest-livekernel"),
				LatestMinidump:    v.GetInt("latest-minidump"),
				EventLogHours:     v.GetInt("eventlog-hours"),
				IncludeLargeDumps: v.GetBool("include-large-dumps"),
				MaxDumpGB:         v.GetInt("max-dump-gb"),
				WERPatterns:       v.GetStringSlice("wer-pattern"),
				LiveKernelFolders: v.GetStringSlice("livekernel-folder"),
				EventLogNames:     v.GetStringSlice("event-log"),
				Paths: bundle.SourcePaths{
					WERQueue:          v.GetString("wer-queue"),
					LiveKernelReports: v.GetString("livekernel-reports"),
					Minidump:          v.GetString("minidump-path"),
				},
			}

			if configPath := v.GetString("config"); configPath != "" {
				if err := applyConfigFile(configPath, cmd.Flags(), &opts); err != nil {
					return errors.Cause(err)
				}
			}

			log.ActionWithoutSpinner("Collecting crash diagnostics")

			manifest, err := collect.Collect(opts, log)
			if err != nil {
				return errors.Cause(err)
			}

			if v.GetBool("archive") {
				log.ActionWithSpinner("Archiving bundle")
				archivePath, err := bundle.Archive(manifest.OutputDir)
				if err != nil {
					log.FinishSpinnerWithError()
					return errors.Cause(err)
				}
				log.FinishSpinner()
				log.ChildActionWithoutSpinner("archived bundle to %s", archivePath)
			}

			if v.GetBool("json") {
				b, err := json.MarshalIndent(manifest, "", "  ")
				if err != nil {
					return errors.Wrap(err, "failed to marshal manifest")
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}

			log.ActionWithoutSpinner("")
			log.Info("Bundle written to %s", manifest.OutputDir)
			log.Info("Copied %d files, skipped %d oversized, %d sources missing",
				len(manifest.CopyReport.Copied), len(manifest.CopyReport.SkippedLarge), len(manifest.CopyReport.Missing))
			log.Info("Next: crashkit summarize")
			log.ActionWithoutSpinner("")

			return nil
		},
	}

	cmd.Flags().String("output", "", "bundle directory to create (default: a timestamped directory under the artifacts root)")
	cmd.Flags().String("artifacts-root", collect.DefaultArtifactsRoot, "directory that holds collected bundles")
	cmd.Flags().Int("latest", collect.DefaultLatestN, "how many of the newest WER report folders to copy")
	cmd.Flags().Int("latest-livekernel", 0, "newest files to copy per LiveKernelReports folder (default: --latest)")
	cmd.Flags().Int("latest-minidump", 0, "newest minidump files to copy (default: --latest)")
	cmd.Flags().Int("eventlog-hours", collect.DefaultEventLogHours, "how many hours of event log history to export")
	cmd.Flags().Bool("include-large-dumps", false, "copy dump files larger than the size limit instead of skipping them")
	cmd.Flags().Int("max-dump-gb", collect.DefaultMaxDumpGB, "size limit in GB above which dump files are skipped")
	cmd.Flags().StringSlice("wer-pattern", collect.DefaultWERPatterns, "WER report folder name patterns to collect")
	cmd.Flags().StringSlice("livekernel-folder", collect.DefaultLiveKernelFolders, "LiveKernelReports subfolders to collect")
	cmd.Flags().StringSlice("event-log", collect.DefaultEventLogNames, "event log channels to export")
	cmd.Flags().String("wer-queue", collect.DefaultWERQueue, "path of the WER report queue")
	cmd.Flags().String("livekernel-reports", collect.DefaultLiveKernelReports, "path of the LiveKernelReports directory")
	cmd.Flags().String("minidump-path", collect.DefaultMinidump, "path of the minidump directory")
	cmd.Flags().String("config", "", "path to a config file with paths, patterns and custom source groups")
	cmd.Flags().Bool("archive", false, "pack the finished bundle into a sibling tar.gz")
	cmd.Flags().Bool("json", false, "print the bundle manifest as json instead of progress output")

	return cmd
}

// applyConfigFile layers the config file under the command line: a key from
// the file wins only when the matching flag was left at its default.
func applyConfigFile(path string, flags *pflag.FlagSet, opts *collect.Options) error {
	cfg := viper.New()
	cfg.SetConfigFile(path)
	if err := cfg.ReadInConfig(); err != nil {
		return errors.Wrap(err, "failed to read config file")
	}
	opts.ConfigPath = path

	setString := func(key string, flag string, dst *string) {
		if cfg.IsSet(key) && !flags.Changed(flag) {
			*dst = cfg.GetString(key)
		}
	}
	setInt := func(key string, flag string, dst *int) {
		if cfg.IsSet(key) && !flags.Changed(flag) {
			*dst = cfg.GetInt(key)
		}
	}
	setBool := func(key string, flag string, dst *bool) {
		if cfg.IsSet(key) && !flags.Changed(flag) {
			*dst = cfg.GetBool(key)
		}
	}
	setStringSlice := func(key string, flag string, dst *[]string) {
		if cfg.IsSet(key) && !flags.Changed(flag) {
			*dst = cfg.GetStringSlice(key)
		}
	}

	setString("output", "output", &opts.OutputDir)
	setString("artifacts_root", "artifacts-root", &opts.ArtifactsRoot)
	setInt("latest_n", "latest", &opts.LatestN)
	setInt("latest_livekernel", "latest-livekernel", &opts.LatestLiveKernel)
	setInt("latest_minidump", "latest-minidump", &opts.LatestMinidump)
	setInt("eventlog_hours", "eventlog-hours", &opts.EventLogHours)
	setBool("include_large_dumps", "include-large-dumps", &opts.IncludeLargeDumps)
	setInt("max_dump_gb", "max-dump-gb", &opts.MaxDumpGB)
	setStringSlice("wer_patterns", "wer-pattern", &opts.WERPatterns)
	setStringSlice("livekernel_folders", "livekernel-folder", &opts.LiveKernelFolders)
	setStringSlice("event_logs", "event-log", &opts.EventLogNames)
	setString("paths.wer_queue", "wer-queue", &opts.Paths.WERQueue)
	setString("paths.livekernel_reports", "livekernel-reports", &opts.Paths.LiveKernelReports)
	setString("paths.minidump", "minidump-path", &opts.Paths.Minidump)

	if cfg.IsSet("custom") {
		groups := map[string]collect.CustomGroup{}
		if err := cfg.UnmarshalKey("custom", &groups); err != nil {
			return errors.Wrap(err, "failed to parse custom groups")
		}
		opts.CustomGroups = groups
	}

	return nil
}
