package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shouni/go-stepfun/pkg/stepfun"
)

// ----------------------------------------------------------------------
// グローバルフラグ
// ----------------------------------------------------------------------

var (
	logLevel       string
	itemsPath      string
	outPath        string
	continueOnFail bool
	paramPairs     []string

	// cfg は PersistentPreRunE で読み込まれた設定です。
	cfg stepfun.Config
)

// NewRootCmd は stepfun コマンドを組み立てます。
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "stepfun",
		Short:         "stepfun runs the StepFun speech nodes (TTS / ASR) from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := stepfun.LoadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				level, err := stepfun.ParseLogLevel(logLevel)
				if err != nil {
					return err
				}
				loaded.LogLevel = level
			}
			cfg = loaded

			// ログ設定
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: cfg.LogLevel,
			})))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&itemsPath, "items", "i", "", "JSON file with input items ([{\"json\":{...},\"binary\":{...}}])")
	rootCmd.PersistentFlags().StringVarP(&outPath, "out", "o", "", "write output items to this file instead of stdout")
	rootCmd.PersistentFlags().BoolVar(&continueOnFail, "continue-on-fail", false, "turn failed items into error outputs instead of aborting")
	rootCmd.PersistentFlags().StringArrayVarP(&paramPairs, "param", "P", []string{}, "node parameter as name=value (repeatable)")

	rootCmd.AddCommand(
		newTTSCmd(),
		newASRCmd(),
		newVoicesCmd(),
		newCredentialCmd(),
		newDescribeCmd(),
		newCopyAssetsCmd(),
	)
	return rootCmd
}
