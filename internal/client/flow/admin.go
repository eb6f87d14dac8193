package flow

import (
	"context"
	"errors"

	clientapi "license_backend/internal/client/api"
)

// AdminController は管理者オーバーライドページを駆動します。
type AdminController struct {
	api       WorkflowAPI
	notifier  Notifier
	navigator Navigator
}

// NewAdminController はAdminControllerの新しいインスタンスを生成します。
func NewAdminController(api WorkflowAPI, notifier Notifier, navigator Navigator) *AdminController {
	return &AdminController{api: api, notifier: notifier, navigator: navigator}
}

// Submit はパスワードを一度だけ送信します。資格情報は保持しません。
// 成功時はオーバーライドフラグ付きで結果ページへ遷移します。
func (a *AdminController) Submit(ctx context.Context, password string) {
	if err := a.api.AdminOverride(ctx, password); err != nil {
		var statusErr *clientapi.StatusError
		if errors.As(err, &statusErr) {
			message := statusErr.Message
			if message == "" {
				message = "Verification failed"
			}
			a.notifier.Notify(message)
			return
		}
		a.notifier.Notify("Error: " + err.Error())
		return
	}

	a.navigator.Navigate("/result?verified=true")
}
