// Package flow は検証フローの各ページを駆動するコントローラーを実装します。
// コントローラーは単一ゴルーチンから呼ばれる前提で、段階をまたぐ状態は
// 一切保持しません（セッションはトランスポート層のクッキーが運びます）。
package flow

import (
	"context"
	"io"

	wire "license_backend/internal/api"
)

// WorkflowAPI は検証フローバックエンドへのワイヤー操作を定義します。
// Goの慣例に従い、インターフェースはプロバイダー（client/api）ではなくコンシューマー（flow)が定義します。
type WorkflowAPI interface {
	// DetectDocument は画像をアップロードして書類検出を要求します。
	DetectDocument(ctx context.Context, filename string, image io.Reader) (*wire.DetectResponse, error)
	// ExtractFields は切り出し済み画像からのフィールド抽出を要求します。
	ExtractFields(ctx context.Context) (*wire.LicenseData, error)
	// SubmitVerification は確認・編集済みのフィールドを照合に送信します。
	SubmitVerification(ctx context.Context, data wire.LicenseData) error
	// AdminOverride は管理者パスワードによるオーバーライドを要求します。
	AdminOverride(ctx context.Context, password string) error
	// ResultPageData は結果ページのレンダリングデータを取得します。
	ResultPageData(ctx context.Context, verified bool) (*wire.ResultPageData, error)
}

// Notifier は一時通知の表示を抽象化します。
type Notifier interface {
	Notify(message string)
}

// Navigator はページ遷移を抽象化します。
type Navigator interface {
	Navigate(path string)
}
