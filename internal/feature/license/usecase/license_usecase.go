// Package usecase はlicenseフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"license_backend/internal/feature/license/domain/entity"
	"license_backend/internal/shared/ratelimiter"
)

// validTillLayout は有効期限フィールドの日付形式です。
const validTillLayout = "2006-01-02"

// TextRecognizer は画像からテキストを読み取るOCRインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type TextRecognizer interface {
	// RecognizeText は画像バイト列から読み取った生テキストを返します。
	RecognizeText(ctx context.Context, imageData []byte) (string, error)
}

// FieldStructurer はOCRの生テキストを免許証フィールドに構造化するインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type FieldStructurer interface {
	// StructureFields は生テキストから3つのフィールドを抽出します。
	// 読み取れなかったフィールドは空文字列になります。
	StructureFields(ctx context.Context, text string) (entity.Fields, error)
}

// LicenseRepository は免許証レジストリの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type LicenseRepository interface {
	// FindMatch は番号・氏名（部分一致）・有効期限が一致するレコードを取得します。
	// 一致するレコードがない場合、ErrLicenseNotFoundを返します。
	FindMatch(ctx context.Context, dlNumber, name, validTill string) (*entity.License, error)

	// Create は新しい免許証レコードを登録します。
	// 同じ番号のレコードが既に存在する場合、ErrLicenseAlreadyExistsを返します。
	Create(ctx context.Context, lic *entity.License) error

	// List は登録済みレコードを新しい順に返します。
	List(ctx context.Context) ([]entity.License, error)
}

// licenseUsecase は抽出・検証・登録のビジネスロジックを提供します。
type licenseUsecase struct {
	recognizer  TextRecognizer
	structurer  FieldStructurer
	licenses    LicenseRepository
	rateLimiter ratelimiter.RateLimiterInterface

	// now はテストで日付を固定するために差し替え可能にしています。
	now func() time.Time
}

// NewLicenseUsecase はlicenseUsecaseの新しいインスタンスを生成します。
func NewLicenseUsecase(recognizer TextRecognizer, structurer FieldStructurer,
	licenses LicenseRepository, rl ratelimiter.RateLimiterInterface) *licenseUsecase {
	return &licenseUsecase{
		recognizer:  recognizer,
		structurer:  structurer,
		licenses:    licenses,
		rateLimiter: rl,
		now:         time.Now,
	}
}

// Extract はセッションの切り出し画像からフィールドを抽出します。
// 書類が未検出の場合はErrNoCroppedImageを返します。
func (u *licenseUsecase) Extract(ctx context.Context, croppedPath string) (entity.Fields, error) {
	if croppedPath == "" {
		return entity.Fields{}, ErrNoCroppedImage
	}

	imageData, err := os.ReadFile(croppedPath)
	if err != nil {
		return entity.Fields{}, fmt.Errorf("failed to read cropped image: %w", err)
	}

	// 外部APIのクォータ保護のため、呼び出し頻度を制限する
	u.rateLimiter.WaitIfNeeded()

	text, err := u.recognizer.RecognizeText(ctx, imageData)
	if err != nil {
		return entity.Fields{}, fmt.Errorf("text recognition failed: %w", err)
	}

	fields, err := u.structurer.StructureFields(ctx, text)
	if err != nil {
		return entity.Fields{}, fmt.Errorf("field structuring failed: %w", err)
	}
	return fields, nil
}

// Verify は確認済みフィールドをレジストリと照合し、3値判定を返します。
// 有効期限が解釈できない場合は期限切れ扱いになります。
func (u *licenseUsecase) Verify(ctx context.Context, fields entity.Fields) (*entity.VerificationResult, error) {
	isValid := false
	if d, err := time.Parse(validTillLayout, fields.ValidTill); err == nil {
		// ローカル日付同士の比較。パース結果はUTC深夜なので、
		// 現地時刻の年月日からUTC深夜を組み立てて突き合わせる。
		y, m, day := u.now().Date()
		today := time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
		isValid = !d.Before(today)
	}

	exists := true
	if _, err := u.licenses.FindMatch(ctx, fields.DLNumber, fields.Name, fields.ValidTill); err != nil {
		if !errors.Is(err, ErrLicenseNotFound) {
			return nil, fmt.Errorf("registry lookup failed: %w", err)
		}
		exists = false
	}

	// レコードが存在して期限内なら成功、期限切れなら expired、それ以外は denied
	outcome := entity.OutcomeDenied
	switch {
	case exists && isValid:
		outcome = entity.OutcomeSuccess
	case !isValid:
		outcome = entity.OutcomeExpired
	}

	return &entity.VerificationResult{
		Outcome:    outcome,
		IsValid:    isValid,
		ExistsInDB: exists,
	}, nil
}

// Register はフィールドを新しいレジストリレコードとして登録します。
// 管理者オーバーライドおよびレジストリAPIから使用されます。
func (u *licenseUsecase) Register(ctx context.Context, fields entity.Fields, imagePath string) error {
	lic := &entity.License{
		DLNumber:  fields.DLNumber,
		Name:      fields.Name,
		ValidTill: fields.ValidTill,
		ImagePath: imagePath,
	}
	return u.licenses.Create(ctx, lic)
}

// List は登録済みレコードを返します。
func (u *licenseUsecase) List(ctx context.Context) ([]entity.License, error) {
	return u.licenses.List(ctx)
}
