// Package api は検証フローバックエンドへのワイヤーアダプターを提供します。
// セッションクッキーを保持し、成否判定はHTTPステータスコードではなく
// ボディのstatusフィールドのみで行います。
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"time"

	wire "license_backend/internal/api"
	platformhttp "license_backend/internal/platform/http"
)

// Config holds configuration for the workflow API client.
type Config struct {
	BaseURL string        // Base URL for the backend (e.g., "http://localhost:8080")
	Timeout time.Duration // HTTP request timeout
}

// LoadConfig loads workflow client configuration from environment variables.
func LoadConfig() Config {
	base := os.Getenv("SERVER_BASE_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	return Config{
		BaseURL: strings.TrimRight(base, "/"),
		Timeout: 30 * time.Second,
	}
}

// Client は検証フローの各エンドポイントを呼び出すHTTPクライアントです。
// クッキージャーによりセッションが段階間で引き継がれるため、
// 呼び出し側は段階をまたぐ状態を一切保持しません。
type Client struct {
	cfg    Config
	client *http.Client
}

// NewClient は指定された設定でClientの新しいインスタンスを生成します。
func NewClient(cfg Config) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	hc := platformhttp.NewHTTPClient(cfg.Timeout)
	hc.Jar = jar
	return &Client{cfg: cfg, client: hc}, nil
}

// NewClientWithHTTPClient はテスト用に外部のhttp.Clientを注入します。
func NewClientWithHTTPClient(cfg Config, hc *http.Client) *Client {
	return &Client{cfg: cfg, client: hc}
}

// DetectDocument は画像をアップロードして書類検出を要求します。
// エンドポイント: POST /detect（multipart、フィールド名は file）
func (c *Client) DetectDocument(ctx context.Context, filename string, image io.Reader) (*wire.DetectResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, &TransportError{Op: "detect", Err: err}
	}
	if _, err := io.Copy(fw, image); err != nil {
		return nil, &TransportError{Op: "detect", Err: err}
	}
	if err := mw.Close(); err != nil {
		return nil, &TransportError{Op: "detect", Err: err}
	}

	var out wire.DetectResponse
	if err := c.do(ctx, http.MethodPost, "/detect", mw.FormDataContentType(), &buf, &out); err != nil {
		return nil, err
	}
	if out.Status != wire.StatusSuccess {
		return nil, &StatusError{Message: out.Message}
	}
	return &out, nil
}

// ExtractFields は切り出し済み画像からのフィールド抽出を要求します。
// エンドポイント: POST /verify（ボディなし）
func (c *Client) ExtractFields(ctx context.Context) (*wire.LicenseData, error) {
	var out wire.ExtractResponse
	if err := c.do(ctx, http.MethodPost, "/verify", "", nil, &out); err != nil {
		return nil, err
	}
	if out.Status != wire.StatusSuccess {
		return nil, &StatusError{Message: out.Message}
	}
	return &out.LicenseData, nil
}

// SubmitVerification は確認・編集済みのフィールドを照合に送信します。
// エンドポイント: POST /verify（JSONボディ）
func (c *Client) SubmitVerification(ctx context.Context, data wire.LicenseData) error {
	b, err := json.Marshal(data)
	if err != nil {
		return &TransportError{Op: "verify", Err: err}
	}
	var out wire.StatusResponse
	if err := c.do(ctx, http.MethodPost, "/verify", "application/json", bytes.NewReader(b), &out); err != nil {
		return err
	}
	if out.Status != wire.StatusSuccess {
		return &StatusError{Message: out.Message}
	}
	return nil
}

// AdminOverride は管理者パスワードによるオーバーライドを要求します。
// エンドポイント: POST /admin（フォームエンコード、フィールドは password のみ）
func (c *Client) AdminOverride(ctx context.Context, password string) error {
	form := url.Values{"password": {password}}
	var out wire.StatusResponse
	if err := c.do(ctx, http.MethodPost, "/admin", "application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()), &out); err != nil {
		return err
	}
	if out.Status != wire.StatusSuccess {
		return &StatusError{Message: out.Message}
	}
	return nil
}

// ResultPageData は結果ページのレンダリングデータを取得します。
// エンドポイント: GET /result（オーバーライド経由では verified=true を付与）
func (c *Client) ResultPageData(ctx context.Context, verified bool) (*wire.ResultPageData, error) {
	path := "/result"
	if verified {
		path += "?verified=true"
	}
	var out wire.ResultPageData
	if err := c.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do はリクエストを1回だけ実行し、レスポンスボディをデコードします。
// HTTPステータスコードは成否判定に使用しません。成否の解釈は呼び出し元が
// ボディのstatusフィールドで行います。
func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return &TransportError{Op: path, Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return &TransportError{Op: path, Err: err}
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return &TransportError{Op: path, Err: err}
	}
	return nil
}
