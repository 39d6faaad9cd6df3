package main

import (
	"log/slog"
	"os"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		slog.Error("コマンドの実行に失敗しました。", "error", err)
		os.Exit(1)
	}
}
