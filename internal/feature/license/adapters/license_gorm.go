package adapters

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"license_backend/internal/feature/license/domain/entity"
	"license_backend/internal/feature/license/usecase"
)

// licenseGorm はLicenseRepositoryインターフェースのGORM実装です。
// MySQLとSQLite（開発・テスト用）の両方で動作します。
type licenseGorm struct {
	db *gorm.DB
}

// licenseGormがLicenseRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.LicenseRepository = (*licenseGorm)(nil)

// NewLicenseGorm は指定されたgorm.DB接続でlicenseGormの新しいインスタンスを生成します。
// 依存性注入用のコンストラクタです。
func NewLicenseGorm(db *gorm.DB) *licenseGorm {
	return &licenseGorm{db: db}
}

// FindMatch は番号・氏名（部分一致）・有効期限が一致するレコードを取得します。
// 一致するレコードがない場合、usecase.ErrLicenseNotFoundを返します。
func (r *licenseGorm) FindMatch(ctx context.Context, dlNumber, name, validTill string) (*entity.License, error) {
	var m LicenseModel
	err := r.db.WithContext(ctx).
		Where("dl_number = ? AND name LIKE ? AND valid_till = ?", dlNumber, "%"+name+"%", validTill).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrLicenseNotFound
		}
		return nil, err
	}
	lic := m.toEntity()
	return &lic, nil
}

// Create は免許証レコードをデータベースに追加します。
// 同じ番号のレコードが既に存在する場合、usecase.ErrLicenseAlreadyExistsを返します。
func (r *licenseGorm) Create(ctx context.Context, lic *entity.License) error {
	// 番号の重複を先に確認する（挿入レースはユニーク制約で拾う）
	var count int64
	if err := r.db.WithContext(ctx).Model(&LicenseModel{}).
		Where("dl_number = ?", lic.DLNumber).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return usecase.ErrLicenseAlreadyExists
	}

	m := fromEntity(lic)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		// MySQLエラー1062: ユニークキーの重複エントリ
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return usecase.ErrLicenseAlreadyExists
		}
		// SQLiteなど他ドライバの重複はGORMの変換エラーで拾う
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return usecase.ErrLicenseAlreadyExists
		}
		return err
	}
	lic.ID = m.ID
	lic.CreatedAt = m.CreatedAt
	return nil
}

// List は登録済みレコードを新しい順に返します。
func (r *licenseGorm) List(ctx context.Context) ([]entity.License, error) {
	var models []LicenseModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]entity.License, 0, len(models))
	for i := range models {
		out = append(out, models[i].toEntity())
	}
	return out, nil
}
