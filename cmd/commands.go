package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shouni/go-stepfun/pkg/stepfun"
	"github.com/shouni/go-stepfun/pkg/stepfun/asr"
	"github.com/shouni/go-stepfun/pkg/stepfun/assets"
	"github.com/shouni/go-stepfun/pkg/stepfun/node"
	"github.com/shouni/go-stepfun/pkg/stepfun/param"
	"github.com/shouni/go-stepfun/pkg/stepfun/tts"
)

// ----------------------------------------------------------------------
// ノード実行コマンド
// ----------------------------------------------------------------------

// flagParams は個別フラグとパラメータ名の対応です。
type flagParams map[string]*string

func (fp flagParams) apply(cmd *cobra.Command, values param.Values) {
	for name, v := range fp {
		if cmd.Flags().Changed(name) {
			values[name] = *v
		}
	}
}

func newTTSCmd() *cobra.Command {
	fp := flagParams{
		"text":         new(string),
		"voice":        new(string),
		"model":        new(string),
		"outputFormat": new(string),
		"fileName":     new(string),
	}

	cmd := &cobra.Command{
		Use:   "tts",
		Short: "Convert text into speech",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNode(cmd, tts.New(), func(values param.Values, _ []node.Item) {
				fp.apply(cmd, values)
			})
		},
	}
	cmd.Flags().StringVarP(fp["text"], "text", "t", "", "text to synthesize (may reference item fields, e.g. ={{.line}})")
	cmd.Flags().StringVar(fp["voice"], "voice", "", "voice id")
	cmd.Flags().StringVarP(fp["model"], "model", "m", tts.DefaultModel, "TTS model")
	cmd.Flags().StringVarP(fp["outputFormat"], "outputFormat", "f", tts.DefaultOutputFormat, "audio format (mp3, aac, flac, wav, pcm, opus)")
	cmd.Flags().StringVar(fp["fileName"], "fileName", tts.DefaultFileNameStem, "output file name without extension")
	return cmd
}

func newASRCmd() *cobra.Command {
	var audioFile string
	fp := flagParams{
		"audioUrl":       new(string),
		"model":          new(string),
		"language":       new(string),
		"prompt":         new(string),
		"responseFormat": new(string),
	}

	cmd := &cobra.Command{
		Use:   "asr",
		Short: "Transcribe speech into text",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNode(cmd, asr.New(), func(values param.Values, items []node.Item) {
				fp.apply(cmd, values)
				if cmd.Flags().Changed("audioUrl") {
					values["audioSource"] = "url"
				}
				if audioFile == "" {
					return
				}
				field := asr.DefaultBinaryPropertyName
				if v, ok := values["binaryPropertyName"].(string); ok && v != "" {
					field = v
				}
				for i := range items {
					if items[i].Binary == nil {
						items[i].Binary = map[string]node.BinaryData{}
					}
					items[i].Binary[field] = node.BinaryData{Path: audioFile}
				}
			})
		},
	}
	cmd.Flags().StringVar(&audioFile, "file", "", "audio file attached to every item")
	cmd.Flags().StringVar(fp["audioUrl"], "audioUrl", "", "download audio from this URL instead of a binary property")
	cmd.Flags().StringVarP(fp["model"], "model", "m", asr.DefaultModel, "ASR model")
	cmd.Flags().StringVar(fp["language"], "language", "", "language hint (e.g. zh)")
	cmd.Flags().StringVar(fp["prompt"], "prompt", "", "prompt to guide the transcription")
	cmd.Flags().StringVarP(fp["responseFormat"], "responseFormat", "f", asr.DefaultResponseFormat, "response format (json, text, verbose_json, srt, vtt)")
	return cmd
}

// runNode はアイテムとパラメータを準備し、ノードを実行して出力アイテムを書き出します。
func runNode(cmd *cobra.Command, n node.Executor, prepare func(param.Values, []node.Item)) error {
	items, err := loadItems(itemsPath)
	if err != nil {
		return err
	}
	values, err := parseParams(paramPairs)
	if err != nil {
		return err
	}
	prepare(values, items)

	h := stepfun.NewLocalHost(cfg)
	out, err := n.Execute(cmd.Context(), h, items, values, node.WithContinueOnFail(continueOnFail))
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), outPath, out)
}

// ----------------------------------------------------------------------
// 補助コマンド
// ----------------------------------------------------------------------

func newVoicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "voices",
		Short: "List the system voices available for TTS",
		RunE: func(cmd *cobra.Command, args []string) error {
			options := tts.New().Voices(cmd.Context(), stepfun.NewLocalHost(cfg))
			return writeJSON(cmd.OutOrStdout(), outPath, options)
		},
	}
}

func newCredentialCmd() *cobra.Command {
	credCmd := &cobra.Command{
		Use:   "credential",
		Short: "Credential utilities",
	}
	credCmd.AddCommand(&cobra.Command{
		Use:   "test",
		Short: "Check the API key and base URL with GET {baseUrl}/models",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := stepfun.TestCredential(cmd.Context(), cfg); err != nil {
				return fmt.Errorf("認証情報のテストに失敗しました: %w", err)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return err
		},
	})
	return credCmd
}

func newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe [node]",
		Short: "Print node and credential metadata as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				n, err := stepfun.Lookup(args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), outPath, n.Description())
			}
			return writeJSON(cmd.OutOrStdout(), outPath, stepfun.Describe())
		},
	}
}

func newCopyAssetsCmd() *cobra.Command {
	var root, dist string
	cmd := &cobra.Command{
		Use:   "copy-assets",
		Short: "Copy icons, README and templates into the packaged output directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dist == "" {
				dist = filepath.Join(root, "dist")
			}
			slog.Info("アセットをコピーします。", "root", root, "dist", dist)
			return assets.Copy(root, dist)
		},
	}
	cmd.Flags().StringVar(&root, "root", ".", "project root containing icons/, README.md and templates/")
	cmd.Flags().StringVar(&dist, "dist", "", "output directory (default <root>/dist)")
	return cmd
}
