// Package api は検証フローのワイヤーフォーマット（リクエスト/レスポンスDTO）を定義します。
// サーバーハンドラーとワークフロークライアントの両方がこの型を共有します。
package api

// アプリケーションレベルのステータス値。
// 成功/失敗はHTTPステータスコードではなく、ボディのstatusフィールドで判定します。
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// StatusResponse はステータスとメッセージのみを持つ汎用レスポンスです。
// 検証送信（/verify）と管理者認証（/admin）の成功・失敗レスポンスに使用します。
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// DetectResponse は /detect エンドポイントのレスポンスです。
type DetectResponse struct {
	Status       string  `json:"status"`
	Message      string  `json:"message,omitempty"`
	CroppedImage string  `json:"cropped_image,omitempty"` // 切り出し画像のURL
	Confidence   float64 `json:"confidence,omitempty"`    // 検出信頼度（0.0 ~ 1.0）
}

// DetectFrameResponse は /detect_frame エンドポイントのレスポンスです。
// 未検出はエラーではなく detected=false の成功として返します。
type DetectFrameResponse struct {
	Status       string  `json:"status"`
	Message      string  `json:"message,omitempty"`
	Detected     bool    `json:"detected"`
	Confidence   float64 `json:"confidence,omitempty"`
	CroppedImage string  `json:"cropped_image,omitempty"` // 切り出し画像のURL
	ImagePath    string  `json:"image_path,omitempty"`    // サーバー上の保存パス
}

// LicenseData は免許証から抽出された3つのフィールドを表します。
// /verify の送信リクエストボディとしてもそのまま使用されます。
type LicenseData struct {
	DLNumber  string `json:"dl_number"`
	Name      string `json:"name"`
	ValidTill string `json:"valid_till"`
}

// ExtractResponse はボディなし /verify（抽出トリガー）のレスポンスです。
type ExtractResponse struct {
	Status      string      `json:"status"`
	Message     string      `json:"message,omitempty"`
	LicenseData LicenseData `json:"license_data"`
}

// ResultPageData は結果ページに添付されるレンダリングデータです。
// result_type が3つのパネル（success / expired / それ以外はdenied）を選択します。
type ResultPageData struct {
	ResultType string `json:"result_type"`
	Name       string `json:"name,omitempty"`
	DLNumber   string `json:"dl_number,omitempty"`
	ValidTill  string `json:"valid_till,omitempty"`
}

// ErrorResponse は管理者レジストリAPIのエラーレスポンスです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse は管理者レジストリAPIの成功メッセージレスポンスです。
type MessageResponse struct {
	Message string `json:"message"`
}

// TokenResponse は管理者トークン発行のレスポンスです。
type TokenResponse struct {
	Token string `json:"token"`
}

// AdminTokenRequest は /admin/token エンドポイントのリクエストボディです。
type AdminTokenRequest struct {
	Password string `json:"password" binding:"required"`
}

// LicenseRequest は管理者レジストリAPIの免許証登録リクエストです。
type LicenseRequest struct {
	DLNumber  string `json:"dl_number" binding:"required"`
	Name      string `json:"name" binding:"required"`
	ValidTill string `json:"valid_till" binding:"required"`
}
