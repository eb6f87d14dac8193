// Package adapters はlicenseフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"time"

	"license_backend/internal/feature/license/domain/entity"
)

// LicenseModel はlicensesテーブルのGORMモデルです。
type LicenseModel struct {
	ID        uint   `gorm:"primaryKey"`
	DLNumber  string `gorm:"column:dl_number;uniqueIndex;size:64;not null"`
	Name      string `gorm:"size:255;not null"`
	ValidTill string `gorm:"size:32;not null"`
	ImagePath string `gorm:"size:255"`
	CreatedAt time.Time
}

// TableName はテーブル名を明示します。
func (LicenseModel) TableName() string {
	return "licenses"
}

// toEntity はモデルをドメインエンティティへ変換します。
func (m *LicenseModel) toEntity() entity.License {
	return entity.License{
		ID:        m.ID,
		DLNumber:  m.DLNumber,
		Name:      m.Name,
		ValidTill: m.ValidTill,
		ImagePath: m.ImagePath,
		CreatedAt: m.CreatedAt,
	}
}

// fromEntity はドメインエンティティをモデルへ変換します。
func fromEntity(lic *entity.License) LicenseModel {
	return LicenseModel{
		ID:        lic.ID,
		DLNumber:  lic.DLNumber,
		Name:      lic.Name,
		ValidTill: lic.ValidTill,
		ImagePath: lic.ImagePath,
		CreatedAt: lic.CreatedAt,
	}
}
