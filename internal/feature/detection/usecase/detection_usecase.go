// Package usecase はdetectionフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"license_backend/internal/feature/detection/domain/entity"
	"license_backend/internal/shared/ratelimiter"
)

const (
	// MaxImageSize は画像アップロードの最大サイズ（10MB）です。
	MaxImageSize = 10 * 1024 * 1024
	// MinConfidence は書類検出を採用する最低信頼度です。
	MinConfidence = 0.93
)

// allowedExtensions はアップロードを許可する画像拡張子です。
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// DocumentLocator は画像から書類の位置を検出するインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type DocumentLocator interface {
	// LocateDocument は画像バイト列から最も確度の高い書類領域と信頼度を返します。
	// 書類が見つからない場合は (nil, 0, nil) を返します。
	LocateDocument(ctx context.Context, imageData []byte) (*entity.BoundingBox, float64, error)
}

// ImageStore は切り出し画像の保存先を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type ImageStore interface {
	// SaveCropped は切り出し画像を保存し、ディスク上のパスと公開URLを返します。
	SaveCropped(name string, data []byte) (path string, url string, err error)
}

// detectionUsecase は書類の検出・切り出しのビジネスロジックを提供します。
type detectionUsecase struct {
	locator     DocumentLocator
	store       ImageStore
	rateLimiter ratelimiter.RateLimiterInterface
}

// NewDetectionUsecase はdetectionUsecaseの新しいインスタンスを生成します。
func NewDetectionUsecase(locator DocumentLocator, store ImageStore, rl ratelimiter.RateLimiterInterface) *detectionUsecase {
	return &detectionUsecase{locator: locator, store: store, rateLimiter: rl}
}

// Detect はアップロードされた画像から書類を検出し、切り出して保存します。
// 信頼度がMinConfidence未満、または書類が見つからない場合はErrLowConfidenceを返します。
func (u *detectionUsecase) Detect(ctx context.Context, filename string, imageData []byte) (*entity.DetectedDocument, error) {
	if len(imageData) == 0 {
		return nil, fmt.Errorf("image data is empty")
	}
	if len(imageData) > MaxImageSize {
		return nil, fmt.Errorf("image size exceeds maximum of %d bytes", MaxImageSize)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return nil, ErrUnsupportedFile
	}

	// 外部APIのクォータ保護のため、呼び出し頻度を制限する
	u.rateLimiter.WaitIfNeeded()

	box, confidence, err := u.locator.LocateDocument(ctx, imageData)
	if err != nil {
		return nil, fmt.Errorf("document locator failed: %w", err)
	}
	if box == nil || confidence < MinConfidence {
		return nil, ErrLowConfidence
	}

	cropped, err := cropImage(imageData, box)
	if err != nil {
		return nil, fmt.Errorf("failed to crop image: %w", err)
	}

	path, url, err := u.store.SaveCropped("cropped_"+filepath.Base(filename), cropped)
	if err != nil {
		return nil, fmt.Errorf("failed to store cropped image: %w", err)
	}

	return &entity.DetectedDocument{
		CroppedPath: path,
		CroppedURL:  url,
		Confidence:  confidence,
	}, nil
}
