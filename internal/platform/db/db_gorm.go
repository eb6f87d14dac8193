// Package db はGORMによるデータベース接続の初期化を提供します。
package db

import (
	"fmt"
	"log"
	"os"
	"time"

	gmysql "gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	licenseadapters "license_backend/internal/feature/license/adapters"
)

// OpenDB はライセンスレジストリ用のデータベース接続を開きます。
// DB_HOSTが設定されていればMySQL、未設定ならローカル開発用のSQLiteを使用します。
// MySQLは起動直後に接続できないことがあるため、60秒を上限にリトライします。
func OpenDB() *gorm.DB {
	host := os.Getenv("DB_HOST")

	var (
		db  *gorm.DB
		err error
	)

	if host == "" {
		path := os.Getenv("SQLITE_PATH")
		if path == "" {
			path = "./license.db"
		}
		db, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open sqlite database: %v", err)
		}
		log.Println("USING_SQLITE:", path)
	} else {
		user := os.Getenv("DB_USER")
		pass := os.Getenv("DB_PASSWORD")
		port := os.Getenv("DB_PORT")
		name := os.Getenv("DB_NAME")
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
			user, pass, host, port, name)

		deadline := time.Now().Add(60 * time.Second)
		for {
			db, err = gorm.Open(gmysql.Open(dsn), &gorm.Config{})
			if err == nil {
				break
			}
			if time.Now().After(deadline) {
				log.Fatalf("DB connect failed after 60s: %v", err)
			}
			log.Printf("DB connect failed, retrying...: %v", err)
			time.Sleep(3 * time.Second)
		}
	}

	if os.Getenv("RUN_MIGRATIONS") == "true" {
		// マイグレーション（licensesテーブル）
		if err := db.AutoMigrate(&licenseadapters.LicenseModel{}); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
	}

	return db
}
