// Package handler はlicenseフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"license_backend/internal/api"
	"license_backend/internal/feature/license/domain/entity"
	"license_backend/internal/feature/license/usecase"
	"license_backend/internal/platform/session"
)

// LicenseUsecase は抽出・検証のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type LicenseUsecase interface {
	Extract(ctx context.Context, croppedPath string) (entity.Fields, error)
	Verify(ctx context.Context, fields entity.Fields) (*entity.VerificationResult, error)
}

// LicenseHandler は抽出・検証・結果データのHTTPリクエストを処理します。
type LicenseHandler struct {
	uc       LicenseUsecase
	sessions session.Store
}

// NewLicenseHandler はLicenseHandlerの新しいインスタンスを生成します。
func NewLicenseHandler(uc LicenseUsecase, sessions session.Store) *LicenseHandler {
	return &LicenseHandler{uc: uc, sessions: sessions}
}

// Verify は /verify へのPOSTを処理します。
//
// 同じパスがボディの形で2つの操作を提供します（ワイヤー互換のための意図的な多重化）:
//   - ボディなし（または3フィールドをいずれも含まないJSON）: セッションの切り出し
//     画像からフィールドを抽出して返す
//   - 3フィールドを含むJSON: ユーザーが確認した値をレジストリと照合する
func (h *LicenseHandler) Verify(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		slog.Error("リクエストボディの読み取りに失敗", "error", err)
		c.JSON(http.StatusBadRequest, api.StatusResponse{Status: api.StatusError, Message: "Verification failed"})
		return
	}

	if isExtractRequest(body) {
		h.extract(c)
		return
	}

	var req api.LicenseData
	if err := json.Unmarshal(body, &req); err != nil {
		slog.Warn("検証リクエストのデコードに失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.StatusResponse{Status: api.StatusError, Message: "Invalid request body"})
		return
	}
	h.submit(c, req)
}

// isExtractRequest はボディが抽出トリガー（フィールドなし）かどうかを判定します。
func isExtractRequest(body []byte) bool {
	if len(body) == 0 {
		return true
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		// 不正なJSONは送信操作として扱い、後続のデコードでエラーにする
		return false
	}
	for _, key := range []string{"dl_number", "name", "valid_till"} {
		if _, ok := probe[key]; ok {
			return false
		}
	}
	return true
}

// extract はセッションの切り出し画像からフィールドを抽出します。
func (h *LicenseHandler) extract(c *gin.Context) {
	sid := session.FromContext(c)
	st, err := h.sessions.Get(c.Request.Context(), sid)
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		slog.Error("セッションの取得に失敗", "error", err, "session_id", sid)
		c.JSON(http.StatusInternalServerError, api.StatusResponse{Status: api.StatusError, Message: "Extraction failed"})
		return
	}

	croppedPath := ""
	if st != nil {
		croppedPath = st.CroppedImagePath
	}

	fields, err := h.uc.Extract(c.Request.Context(), croppedPath)
	if err != nil {
		if errors.Is(err, usecase.ErrNoCroppedImage) {
			c.JSON(http.StatusBadRequest, api.StatusResponse{Status: api.StatusError, Message: "No document detected"})
			return
		}
		slog.Error("フィールド抽出に失敗", "error", err, "session_id", sid)
		c.JSON(http.StatusInternalServerError, api.StatusResponse{Status: api.StatusError, Message: "Extraction failed"})
		return
	}

	data := api.LicenseData{
		DLNumber:  fields.DLNumber,
		Name:      fields.Name,
		ValidTill: fields.ValidTill,
	}

	// 抽出結果をセッションに記録し、管理者オーバーライドが参照できるようにする
	if st == nil {
		st = &session.State{}
	}
	st.LicenseData = &data
	if err := h.sessions.Save(c.Request.Context(), sid, st); err != nil {
		slog.Error("セッションの保存に失敗", "error", err, "session_id", sid)
		c.JSON(http.StatusInternalServerError, api.StatusResponse{Status: api.StatusError, Message: "Extraction failed"})
		return
	}

	c.JSON(http.StatusOK, api.ExtractResponse{
		Status:      api.StatusSuccess,
		LicenseData: data,
	})
}

// submit はユーザーが確認したフィールドをレジストリと照合します。
// 照合の成否（denied/expired）はここでは失敗にせず、結果ページが提示します。
func (h *LicenseHandler) submit(c *gin.Context, req api.LicenseData) {
	res, err := h.uc.Verify(c.Request.Context(), entity.Fields{
		DLNumber:  req.DLNumber,
		Name:      req.Name,
		ValidTill: req.ValidTill,
	})
	if err != nil {
		slog.Error("検証に失敗", "error", err)
		c.JSON(http.StatusInternalServerError, api.StatusResponse{Status: api.StatusError, Message: "Verification failed"})
		return
	}

	sid := session.FromContext(c)
	st, err := h.sessions.Get(c.Request.Context(), sid)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			slog.Error("セッションの取得に失敗", "error", err, "session_id", sid)
			c.JSON(http.StatusInternalServerError, api.StatusResponse{Status: api.StatusError, Message: "Verification failed"})
			return
		}
		st = &session.State{}
	}

	// 提出された最新の値で上書きする（抽出時の値ではなく）
	st.LicenseData = &req
	st.IsValid = res.IsValid
	st.ExistsInDB = res.ExistsInDB
	st.Verified = true
	if err := h.sessions.Save(c.Request.Context(), sid, st); err != nil {
		slog.Error("セッションの保存に失敗", "error", err, "session_id", sid)
		c.JSON(http.StatusInternalServerError, api.StatusResponse{Status: api.StatusError, Message: "Verification failed"})
		return
	}

	slog.Info("検証を記録", "session_id", sid, "outcome", res.Outcome)
	c.JSON(http.StatusOK, api.StatusResponse{Status: api.StatusSuccess})
}

// Result は結果ページに添付されるレンダリングデータを返します。
//
// エンドポイント: GET /result?verified=true
// 判別値は1つ: success / expired / それ以外はすべてdenied（フェイルクローズ）。
// verified=true クエリは、セッションに管理者オーバーライドが記録されている場合に
// 限って成功判定を強制します（URLフラグ単独では不十分）。
func (h *LicenseHandler) Result(c *gin.Context) {
	sid := session.FromContext(c)
	st, err := h.sessions.Get(c.Request.Context(), sid)
	if err != nil {
		// セッションがない（または読めない）場合は拒否として描画する
		if !errors.Is(err, session.ErrNotFound) {
			slog.Error("セッションの取得に失敗", "error", err, "session_id", sid)
		}
		c.JSON(http.StatusOK, api.ResultPageData{ResultType: string(entity.OutcomeDenied)})
		return
	}

	override := c.Query("verified") == "true" && st.Override

	resultType := entity.OutcomeDenied
	switch {
	case override:
		resultType = entity.OutcomeSuccess
	case !st.Verified:
		// 検証前に結果ページへ来た場合は拒否扱い
	case st.ExistsInDB && st.IsValid:
		resultType = entity.OutcomeSuccess
	case !st.IsValid:
		resultType = entity.OutcomeExpired
	}

	data := api.ResultPageData{ResultType: string(resultType)}
	if resultType == entity.OutcomeSuccess && st.LicenseData != nil {
		data.Name = st.LicenseData.Name
		data.DLNumber = st.LicenseData.DLNumber
		data.ValidTill = st.LicenseData.ValidTill
	}
	c.JSON(http.StatusOK, data)
}
