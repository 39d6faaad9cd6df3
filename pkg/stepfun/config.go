// Package stepfun は StepFun 音声APIのノード群を組み立てるための設定・ファクトリ・レジストリを提供します。
package stepfun

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/shouni/go-stepfun/pkg/stepfun/credential"
)

// ----------------------------------------------------------------------
// 設定定数
// ----------------------------------------------------------------------

const (
	EnvAPIKey      = "STEPFUN_API_KEY"
	EnvBaseURL     = "STEPFUN_BASE_URL"
	EnvHTTPTimeout = "STEPFUN_HTTP_TIMEOUT"
	EnvOutputDir   = "STEPFUN_OUTPUT_DIR"
	EnvLogLevel    = "STEPFUN_LOG_LEVEL"

	DefaultHTTPTimeout = 60 * time.Second
)

// Config は環境変数から読み込んだ実行設定です。
type Config struct {
	Credential  credential.Credential
	HTTPTimeout time.Duration
	OutputDir   string
	LogLevel    slog.Level
}

// LoadConfig はカレントディレクトリの .env (存在する場合) を読み込んだ後、環境変数から設定を組み立てます。
// 既に設定されている環境変数は .env で上書きされません。
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Credential: credential.Credential{
			APIKey:  os.Getenv(EnvAPIKey),
			BaseURL: os.Getenv(EnvBaseURL),
		},
		HTTPTimeout: DefaultHTTPTimeout,
		OutputDir:   os.Getenv(EnvOutputDir),
		LogLevel:    slog.LevelInfo,
	}

	if cfg.Credential.BaseURL == "" {
		cfg.Credential.BaseURL = credential.DefaultBaseURL
		slog.Warn(EnvBaseURL+" 環境変数が設定されていません。", "default_url", cfg.Credential.BaseURL)
	}

	if v := os.Getenv(EnvHTTPTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("%s の値が不正です: %q", EnvHTTPTimeout, v)
		}
		cfg.HTTPTimeout = d
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		level, err := ParseLogLevel(v)
		if err != nil {
			return Config{}, err
		}
		cfg.LogLevel = level
	}

	return cfg, nil
}

// ParseLogLevel は debug / info / warn / error をログレベルに変換します。
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("ログレベルが不正です: %q", s)
	}
	return level, nil
}
