package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"license_backend/internal/app/di"
	"license_backend/internal/app/router"
	adminhandler "license_backend/internal/feature/admin/transport/handler"
	adminusecase "license_backend/internal/feature/admin/usecase"
	detectionstorage "license_backend/internal/feature/detection/adapters/storage"
	detectionvision "license_backend/internal/feature/detection/adapters/vision"
	detectionhandler "license_backend/internal/feature/detection/transport/handler"
	detectionusecase "license_backend/internal/feature/detection/usecase"
	licensegemini "license_backend/internal/feature/license/adapters/gemini"
	licensevision "license_backend/internal/feature/license/adapters/vision"
	licensehandler "license_backend/internal/feature/license/transport/handler"
	licenseusecase "license_backend/internal/feature/license/usecase"
	platformdb "license_backend/internal/platform/db"
	platformjwt "license_backend/internal/platform/jwt"
	platformredis "license_backend/internal/platform/redis"
	"license_backend/internal/shared/ratelimiter"
)

const (
	defaultUploadsDir = "static/uploads"
	sessionTTL        = 30 * time.Minute
	cacheTTL          = 5 * time.Minute
	tokenExpiration   = time.Hour
)

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	ctx := context.Background()

	// db
	db := platformdb.OpenDB()

	// Redis（セッションとキャッシュに使用。未接続でも縮退稼働する）
	var rdb *redisv9.Client
	if tmp, err := platformredis.NewRedisClient(); err != nil {
		log.Println("[WARN] Redis unavailable. Sessions are in-process and caching is disabled.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// 外部APIクライアント
	locator, err := detectionvision.NewVisionDocumentLocator(ctx)
	if err != nil {
		log.Fatalf("failed to create Vision locator: %v", err)
	}
	recognizer, err := licensevision.NewVisionTextRecognizer(ctx)
	if err != nil {
		log.Fatalf("failed to create Vision recognizer: %v", err)
	}
	structurer, err := licensegemini.NewGeminiStructurer(ctx)
	if err != nil {
		log.Fatalf("failed to create Gemini structurer: %v", err)
	}

	// 画像ストレージ
	uploadsDir := os.Getenv("UPLOADS_DIR")
	if uploadsDir == "" {
		uploadsDir = defaultUploadsDir
	}
	store, err := detectionstorage.NewLocalImageStore(uploadsDir, "/static/uploads")
	if err != nil {
		log.Fatalf("failed to create image store: %v", err)
	}

	// 外部APIのクォータ保護
	visionLimiter := ratelimiter.NewRateLimiter(60, time.Minute)
	geminiLimiter := ratelimiter.NewRateLimiter(15, time.Minute)

	// Repository
	sessions := di.NewSessionStore(rdb, sessionTTL)
	licenseRepo := di.NewLicenseRepository(db, rdb, cacheTTL)

	// Usecase
	detectionUC := detectionusecase.NewDetectionUsecase(locator, store, visionLimiter)
	licenseUC := licenseusecase.NewLicenseUsecase(recognizer, structurer, licenseRepo, geminiLimiter)
	adminUC, err := adminusecase.NewAdminUsecase()
	if err != nil {
		log.Fatalf("failed to configure admin authentication: %v", err)
	}

	// JWT_SECRETチェック（開発中の注意喚起）
	secret := os.Getenv(platformjwt.EnvKeyJWTSecret)
	if secret == "" {
		log.Println("[WARN] JWT_SECRET is not set. Set a strong secret in production.")
	}
	tokens := platformjwt.NewGenerator(secret, tokenExpiration)

	// Handler
	detectionH := detectionhandler.NewDetectionHandler(detectionUC, sessions)
	licenseH := licensehandler.NewLicenseHandler(licenseUC, sessions)
	adminH := adminhandler.NewAdminHandler(adminUC, licenseUC, tokens, sessions)

	// ルータ生成
	r := router.NewRouter(detectionH, licenseH, adminH, uploadsDir)

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
