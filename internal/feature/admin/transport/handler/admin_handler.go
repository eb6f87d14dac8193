// Package handler はadminフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"license_backend/internal/api"
	"license_backend/internal/feature/license/domain/entity"
	licenseusecase "license_backend/internal/feature/license/usecase"
	"license_backend/internal/platform/session"
)

// AdminUsecase は管理者認証のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AdminUsecase interface {
	// Authenticate は管理者パスワードを検証します。
	Authenticate(ctx context.Context, password string) error
}

// LicenseRegistry は免許証レジストリへの登録・参照操作を定義します。
type LicenseRegistry interface {
	// Register は免許証をレジストリに登録します。
	Register(ctx context.Context, fields entity.Fields, imagePath string) error
	// List は登録済みの全免許証を返します。
	List(ctx context.Context) ([]entity.License, error)
}

// TokenGenerator は管理者APIトークンの生成を抽象化します。
type TokenGenerator interface {
	GenerateToken() (string, error)
}

// AdminHandler は管理者オーバーライドとレジストリAPIのHTTPリクエストを処理します。
type AdminHandler struct {
	admin    AdminUsecase
	registry LicenseRegistry
	tokens   TokenGenerator
	sessions session.Store
}

// NewAdminHandler はAdminHandlerの新しいインスタンスを生成します。
func NewAdminHandler(admin AdminUsecase, registry LicenseRegistry, tokens TokenGenerator, sessions session.Store) *AdminHandler {
	return &AdminHandler{admin: admin, registry: registry, tokens: tokens, sessions: sessions}
}

// Override は管理者オーバーライドのエンドポイントを処理します。
// エンドポイント: POST /admin（フォームエンコード、フィールドは password のみ）
// - パスワード不一致時は status="error", message="Incorrect password" を返却
// - 成功時はセッション中の免許証データをレジストリへ登録し（重複は許容）、
//   セッションにオーバーライドを記録して status="success" を返却
func (h *AdminHandler) Override(c *gin.Context) {
	password := c.PostForm("password")
	if err := h.admin.Authenticate(c.Request.Context(), password); err != nil {
		slog.Warn("admin override rejected", "remote_addr", c.ClientIP())
		c.JSON(http.StatusUnauthorized, api.StatusResponse{Status: api.StatusError, Message: "Incorrect password"})
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

	// 手動承認された免許証はレジストリへ登録する。登録済みなら何もしない。
	if st.LicenseData != nil {
		fields := entity.Fields{
			DLNumber:  st.LicenseData.DLNumber,
			Name:      st.LicenseData.Name,
			ValidTill: st.LicenseData.ValidTill,
		}
		if err := h.registry.Register(c.Request.Context(), fields, st.CroppedImagePath); err != nil {
			if errors.Is(err, licenseusecase.ErrLicenseAlreadyExists) {
				slog.Info("License already exists in database", "dl_number", fields.DLNumber)
			} else {
				slog.Error("免許証の登録に失敗", "error", err)
				c.JSON(http.StatusInternalServerError, api.StatusResponse{Status: api.StatusError, Message: "Verification failed"})
				return
			}
		}
	}

	st.Override = true
	if err := h.sessions.Save(c.Request.Context(), sid, st); err != nil {
		slog.Error("セッションの保存に失敗", "error", err, "session_id", sid)
		c.JSON(http.StatusInternalServerError, api.StatusResponse{Status: api.StatusError, Message: "Verification failed"})
		return
	}

	slog.Info("admin override granted", "session_id", sid)
	c.JSON(http.StatusOK, api.StatusResponse{Status: api.StatusSuccess})
}

// Token は管理者APIトークンの発行エンドポイントを処理します。
// エンドポイント: POST /admin/token
func (h *AdminHandler) Token(c *gin.Context) {
	var req api.AdminTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("token request validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}
	if err := h.admin.Authenticate(c.Request.Context(), req.Password); err != nil {
		slog.Warn("token request rejected", "remote_addr", c.ClientIP())
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Incorrect password"})
		return
	}
	token, err := h.tokens.GenerateToken()
	if err != nil {
		slog.Error("トークンの生成に失敗", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "token generation failed"})
		return
	}
	c.JSON(http.StatusOK, api.TokenResponse{Token: token})
}

// CreateLicense は免許証の直接登録エンドポイントを処理します。
// エンドポイント: POST /admin/licenses（要管理者トークン）
func (h *AdminHandler) CreateLicense(c *gin.Context) {
	var req api.LicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("license request validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}
	fields := entity.Fields{DLNumber: req.DLNumber, Name: req.Name, ValidTill: req.ValidTill}
	if err := h.registry.Register(c.Request.Context(), fields, ""); err != nil {
		if errors.Is(err, licenseusecase.ErrLicenseAlreadyExists) {
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "License already exists in database"})
			return
		}
		slog.Error("免許証の登録に失敗", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "registration failed"})
		return
	}
	c.JSON(http.StatusCreated, api.MessageResponse{Message: "ok"})
}

// ListLicenses は登録済み免許証の一覧エンドポイントを処理します。
// エンドポイント: GET /admin/licenses（要管理者トークン）
func (h *AdminHandler) ListLicenses(c *gin.Context) {
	licenses, err := h.registry.List(c.Request.Context())
	if err != nil {
		slog.Error("免許証一覧の取得に失敗", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "list failed"})
		return
	}
	resp := make([]api.LicenseRequest, 0, len(licenses))
	for _, l := range licenses {
		resp = append(resp, api.LicenseRequest{DLNumber: l.DLNumber, Name: l.Name, ValidTill: l.ValidTill})
	}
	c.JSON(http.StatusOK, resp)
}
