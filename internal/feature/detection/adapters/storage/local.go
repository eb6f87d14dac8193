// Package storage は切り出し画像のローカルディスク保存を提供します。
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"license_backend/internal/feature/detection/usecase"
)

// LocalImageStore はアップロードディレクトリ配下に切り出し画像を保存します。
type LocalImageStore struct {
	dir     string // 保存先ディレクトリ（例: static/uploads）
	baseURL string // 公開URLのプレフィックス（例: /static/uploads）
}

// LocalImageStoreがImageStoreを実装していることをコンパイル時に検証します。
var _ usecase.ImageStore = (*LocalImageStore)(nil)

// NewLocalImageStore は保存先ディレクトリを作成してLocalImageStoreを生成します。
func NewLocalImageStore(dir, baseURL string) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalImageStore{dir: dir, baseURL: baseURL}, nil
}

// SaveCropped は切り出し画像を書き込み、ディスク上のパスと公開URLを返します。
// パストラバーサルを防ぐため、ファイル名はベース名のみ使用します。
func (s *LocalImageStore) SaveCropped(name string, data []byte) (string, string, error) {
	name = filepath.Base(name)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write cropped image: %w", err)
	}
	return path, s.baseURL + "/" + name, nil
}
