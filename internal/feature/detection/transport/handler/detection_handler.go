// Package handler はdetectionフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"license_backend/internal/api"
	"license_backend/internal/feature/detection/domain/entity"
	"license_backend/internal/feature/detection/usecase"
	"license_backend/internal/platform/session"
)

// DetectionUsecase は書類検出のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type DetectionUsecase interface {
	Detect(ctx context.Context, filename string, imageData []byte) (*entity.DetectedDocument, error)
}

// DetectionHandler は書類検出のHTTPリクエストを処理します。
// 検出結果の切り出し画像はセッションに記録し、後続の抽出ステージが参照します。
type DetectionHandler struct {
	uc       DetectionUsecase
	sessions session.Store
}

// NewDetectionHandler はDetectionHandlerの新しいインスタンスを生成します。
func NewDetectionHandler(uc DetectionUsecase, sessions session.Store) *DetectionHandler {
	return &DetectionHandler{uc: uc, sessions: sessions}
}

// Detect は画像をアップロードして書類を検出・切り出します。
//
// エンドポイント: POST /detect
// Content-Type: multipart/form-data
// フィールド: file（画像ファイル、最大10MB）
//
// 成功/失敗はボディのstatusフィールドで表現します（ワイヤー互換契約）。
func (h *DetectionHandler) Detect(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		slog.Warn("画像ファイルの取得に失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.StatusResponse{Status: api.StatusError, Message: "No file part"})
		return
	}
	if file.Filename == "" {
		c.JSON(http.StatusBadRequest, api.StatusResponse{Status: api.StatusError, Message: "No selected file"})
		return
	}

	f, err := file.Open()
	if err != nil {
		slog.Error("画像ファイルのオープンに失敗", "error", err)
		c.JSON(http.StatusInternalServerError, api.StatusResponse{Status: api.StatusError, Message: "Processing failed"})
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("画像ファイルのクローズに失敗", "error", err)
		}
	}()

	imageData, err := io.ReadAll(f)
	if err != nil {
		slog.Error("画像データの読み取りに失敗", "error", err)
		c.JSON(http.StatusInternalServerError, api.StatusResponse{Status: api.StatusError, Message: "Processing failed"})
		return
	}

	doc, err := h.uc.Detect(c.Request.Context(), file.Filename, imageData)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrLowConfidence):
			c.JSON(http.StatusBadRequest, api.StatusResponse{Status: api.StatusError, Message: "Low confidence"})
		case errors.Is(err, usecase.ErrUnsupportedFile):
			c.JSON(http.StatusBadRequest, api.StatusResponse{Status: api.StatusError, Message: "Invalid file type"})
		default:
			slog.Error("書類検出に失敗", "error", err)
			c.JSON(http.StatusInternalServerError, api.StatusResponse{Status: api.StatusError, Message: "Processing failed"})
		}
		return
	}

	// 後続ステージのために切り出し画像をセッションに記録する
	sid := session.FromContext(c)
	st, err := h.sessions.Get(c.Request.Context(), sid)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			slog.Error("セッションの取得に失敗", "error", err, "session_id", sid)
			c.JSON(http.StatusInternalServerError, api.StatusResponse{Status: api.StatusError, Message: "Processing failed"})
			return
		}
		st = &session.State{}
	}
	st.CroppedImagePath = doc.CroppedPath
	st.CroppedImageURL = doc.CroppedURL
	if err := h.sessions.Save(c.Request.Context(), sid, st); err != nil {
		slog.Error("セッションの保存に失敗", "error", err, "session_id", sid)
		c.JSON(http.StatusInternalServerError, api.StatusResponse{Status: api.StatusError, Message: "Processing failed"})
		return
	}

	slog.Info("書類検出に成功", "session_id", sid, "confidence", doc.Confidence)
	c.JSON(http.StatusOK, api.DetectResponse{
		Status:       api.StatusSuccess,
		CroppedImage: doc.CroppedURL,
		Confidence:   doc.Confidence,
	})
}

// DetectFrame はカメラフレーム1枚に対する検出を行います。
//
// エンドポイント: POST /detect_frame
// Content-Type: multipart/form-data
// フィールド: frame（JPEGフレーム）
//
// リアルタイムプレビュー用のためセッションには何も記録しません。
// 書類が見つからないフレームはエラーではなく detected=false の成功です。
func (h *DetectionHandler) DetectFrame(c *gin.Context) {
	file, err := c.FormFile("frame")
	if err != nil {
		c.JSON(http.StatusBadRequest, api.StatusResponse{Status: api.StatusError, Message: "No frame provided"})
		return
	}

	f, err := file.Open()
	if err != nil {
		slog.Error("フレームのオープンに失敗", "error", err)
		c.JSON(http.StatusInternalServerError, api.StatusResponse{Status: api.StatusError, Message: "Processing failed"})
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("フレームのクローズに失敗", "error", err)
		}
	}()

	frameData, err := io.ReadAll(f)
	if err != nil {
		slog.Error("フレームデータの読み取りに失敗", "error", err)
		c.JSON(http.StatusInternalServerError, api.StatusResponse{Status: api.StatusError, Message: "Processing failed"})
		return
	}

	// フレームには元のファイル名がないためタイムスタンプで命名する
	filename := time.Now().Format("20060102150405") + ".jpg"
	doc, err := h.uc.Detect(c.Request.Context(), filename, frameData)
	if err != nil {
		if errors.Is(err, usecase.ErrLowConfidence) {
			c.JSON(http.StatusOK, api.DetectFrameResponse{Status: api.StatusSuccess, Detected: false})
			return
		}
		slog.Error("フレーム検出に失敗", "error", err)
		c.JSON(http.StatusInternalServerError, api.StatusResponse{Status: api.StatusError, Message: "Processing failed"})
		return
	}

	c.JSON(http.StatusOK, api.DetectFrameResponse{
		Status:       api.StatusSuccess,
		Detected:     true,
		Confidence:   doc.Confidence,
		CroppedImage: doc.CroppedURL,
		ImagePath:    doc.CroppedPath,
	})
}
