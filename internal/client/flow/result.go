package flow

import (
	"context"

	wire "license_backend/internal/api"
)

// Panel は結果ページに表示されるパネルを表します。3つのパネルは互いに排他です。
type Panel string

const (
	PanelSuccess Panel = "success"
	PanelExpired Panel = "expired"
	PanelDenied  Panel = "denied"
)

// ResultController は結果ページの一回限りの描画を駆動します。
type ResultController struct {
	api WorkflowAPI

	panel   Panel
	details wire.ResultPageData
}

// NewResultController はResultControllerの新しいインスタンスを生成します。
func NewResultController(api WorkflowAPI) *ResultController {
	return &ResultController{api: api}
}

// Load は結果データを取得してパネルを選択します。
// 判別値がsuccess/expired以外の場合（取得失敗や欠損を含む）は拒否パネルを表示します。
func (r *ResultController) Load(ctx context.Context, verified bool) {
	data, err := r.api.ResultPageData(ctx, verified)
	if err != nil || data == nil {
		r.panel = PanelDenied
		r.details = wire.ResultPageData{}
		return
	}

	r.details = *data
	switch data.ResultType {
	case string(PanelSuccess):
		r.panel = PanelSuccess
	case string(PanelExpired):
		r.panel = PanelExpired
	default:
		r.panel = PanelDenied
	}
}

// Panel は表示中のパネルを返します。
func (r *ResultController) Panel() Panel { return r.panel }

// Details は成功パネルに表示するフィールドを返します。
func (r *ResultController) Details() wire.ResultPageData { return r.details }
