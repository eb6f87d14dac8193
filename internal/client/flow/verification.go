package flow

import (
	"context"
	"errors"

	wire "license_backend/internal/api"
	clientapi "license_backend/internal/client/api"
)

// VerificationState は確認ページの状態を表します。
type VerificationState string

const (
	VerificationEntering             VerificationState = "entering"
	VerificationAwaitingConfirmation VerificationState = "awaiting_confirmation"
	VerificationExtractionFailed     VerificationState = "extraction_failed"
)

// VerificationController は確認ページ（自動抽出→編集→照合送信）を駆動します。
type VerificationController struct {
	api       WorkflowAPI
	notifier  Notifier
	navigator Navigator

	state  VerificationState
	fields wire.LicenseData
}

// NewVerificationController はVerificationControllerの新しいインスタンスを生成します。
func NewVerificationController(api WorkflowAPI, notifier Notifier, navigator Navigator) *VerificationController {
	return &VerificationController{
		api:       api,
		notifier:  notifier,
		navigator: navigator,
		state:     VerificationEntering,
	}
}

// Enter はページ表示と同時にフィールド抽出を実行します。
// 失敗時の自動リトライはありません（再入場＝ページ再読み込み）。
func (v *VerificationController) Enter(ctx context.Context) {
	data, err := v.api.ExtractFields(ctx)
	if err != nil {
		v.state = VerificationExtractionFailed
		var statusErr *clientapi.StatusError
		if errors.As(err, &statusErr) {
			v.notifier.Notify("Extraction failed. Please try again.")
			return
		}
		v.notifier.Notify("Error during extraction: " + err.Error())
		return
	}

	// 抽出結果を編集可能フィールドに反映する（欠損フィールドは空文字）
	v.fields = *data
	v.state = VerificationAwaitingConfirmation
}

// Fields は現在の編集可能フィールドを返します。
func (v *VerificationController) Fields() wire.LicenseData { return v.fields }

// SetFields はユーザーの編集内容でフィールドを置き換えます。
func (v *VerificationController) SetFields(fields wire.LicenseData) {
	v.fields = fields
}

// Submit は現在のフィールド値（編集後）を照合に送信します。
// 成功時は結果ページへ遷移し、失敗時は通知して現在の状態に留まります。
func (v *VerificationController) Submit(ctx context.Context) {
	if v.state != VerificationAwaitingConfirmation {
		return
	}

	if err := v.api.SubmitVerification(ctx, v.fields); err != nil {
		var statusErr *clientapi.StatusError
		if errors.As(err, &statusErr) {
			message := statusErr.Message
			if message == "" {
				message = "Unknown error"
			}
			v.notifier.Notify("Verification failed: " + message)
			return
		}
		v.notifier.Notify("Error during verification: " + err.Error())
		return
	}

	v.navigator.Navigate("/result")
}

// State は現在の状態を返します。
func (v *VerificationController) State() VerificationState { return v.state }
