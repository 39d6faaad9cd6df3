// Package assets はパッケージング時にアイコンや README などを出力ディレクトリへコピーします。
package assets

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// IconFileName はノードと認証情報の定義が参照するアイコンです。
const IconFileName = "stepfun.png"

// iconTargets はアイコンを配置するディレクトリです (dist からの相対パス)。
var iconTargets = []string{
	filepath.Join("nodes", "StepFunTts"),
	filepath.Join("nodes", "StepFunAsr"),
	"credentials",
}

// Copy は root 配下の icons/、README.md、templates/ を dist へコピーし、
// アイコンを各ノード・認証情報のディレクトリへ配置します。
// コピー元が存在しない場合はスキップします。
func Copy(root, dist string) error {
	if err := copyDir(filepath.Join(root, "icons"), filepath.Join(dist, "icons")); err != nil {
		return err
	}
	if err := copyFileIfExists(filepath.Join(root, "README.md"), filepath.Join(dist, "README.md")); err != nil {
		return err
	}
	if err := copyDir(filepath.Join(root, "templates"), filepath.Join(dist, "templates")); err != nil {
		return err
	}

	iconSrc := filepath.Join(root, "icons", IconFileName)
	for _, dir := range iconTargets {
		if err := copyFileIfExists(iconSrc, filepath.Join(dist, dir, IconFileName)); err != nil {
			return err
		}
	}

	slog.Info("アセットのコピーが完了しました。", "root", root, "dist", dist)
	return nil
}

// copyDir は src 以下のディレクトリと通常ファイルを再帰的にコピーします。
func copyDir(src, dst string) error {
	info, err := os.Stat(src)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("コピー元ディレクトリが存在しないためスキップします", "src", src)
		return nil
	}
	if err != nil {
		return fmt.Errorf("ディレクトリ %s の確認に失敗しました: %w", src, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s はディレクトリではありません", src)
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			return os.MkdirAll(target, 0o755)
		case d.Type().IsRegular():
			return copyFile(path, target)
		default:
			// シンボリックリンクなどはコピーしない
			return nil
		}
	})
}

func copyFileIfExists(src, dst string) error {
	if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
		slog.Debug("コピー元ファイルが存在しないためスキップします", "src", src)
		return nil
	}
	return copyFile(src, dst)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("ファイル %s を開けません: %w", src, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("ディレクトリ %s の作成に失敗しました: %w", filepath.Dir(dst), err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("ファイル %s を作成できません: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("ファイル %s のコピーに失敗しました: %w", src, err)
	}
	return out.Close()
}
