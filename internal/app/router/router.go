package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	adminhandler "license_backend/internal/feature/admin/transport/handler"
	detectionhandler "license_backend/internal/feature/detection/transport/handler"
	licensehandler "license_backend/internal/feature/license/transport/handler"
	"license_backend/internal/platform/http/handler"
	jwtmw "license_backend/internal/platform/jwt"
	"license_backend/internal/platform/session"
)

func NewRouter(detection *detectionhandler.DetectionHandler, license *licensehandler.LicenseHandler,
	admin *adminhandler.AdminHandler, uploadsDir string) *gin.Engine {
	r := gin.Default()

	// ブラウザクライアント用CORS（クッキー送信のためAllowCredentialsが必要）
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = false
	corsCfg.AllowOriginFunc = func(origin string) bool { return true }
	corsCfg.AllowCredentials = true
	r.Use(cors.New(corsCfg))

	// 認証不要
	// 導通確認用
	r.GET("/healthz", handler.Health)

	// 切り出し画像の配信
	r.Static("/static/uploads", uploadsDir)

	// カメラフレームのリアルタイム検出（セッションに関与しない）
	r.POST("/detect_frame", detection.DetectFrame)

	// 検証フロー（セッションクッキーで段階間の状態を維持）
	flow := r.Group("/")
	flow.Use(session.Middleware())
	{
		flow.POST("/detect", detection.Detect)
		flow.POST("/verify", license.Verify)
		flow.GET("/result", license.Result)
		flow.POST("/admin", admin.Override)
	}

	// 管理者レジストリAPI
	r.POST("/admin/token", admin.Token)
	registry := r.Group("/admin/licenses")
	// jwtmw.AdminRequired() ミドルウェアを適用
	// → リクエストヘッダーに管理者JWTが必要になる
	registry.Use(jwtmw.AdminRequired())
	{
		registry.POST("", admin.CreateLicense)
		registry.GET("", admin.ListLicenses)
	}

	return r
}
