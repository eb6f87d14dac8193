package usecase

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

const (
	// EnvKeyPasswordHash は管理者パスワードのbcryptハッシュを保持する環境変数名です。
	EnvKeyPasswordHash = "ADMIN_PASSWORD_HASH"
	// EnvKeyPassword は開発用の平文パスワードを保持する環境変数名です。
	// ADMIN_PASSWORD_HASHが未設定の場合のみ参照され、起動時にハッシュ化されます。
	EnvKeyPassword = "ADMIN_PASSWORD"
)

// adminUsecase は管理者認証のビジネスロジックを実装します。
// パスワードはbcryptハッシュとしてのみ保持し、平文は保持しません。
type adminUsecase struct {
	passwordHash []byte
}

// NewAdminUsecase は環境変数から管理者パスワード設定を読み込みます。
// ADMIN_PASSWORD_HASHを優先し、未設定の場合はADMIN_PASSWORDをハッシュ化して使用します。
// どちらも未設定の場合はエラーを返します。
func NewAdminUsecase() (*adminUsecase, error) {
	if hash := os.Getenv(EnvKeyPasswordHash); hash != "" {
		return &adminUsecase{passwordHash: []byte(hash)}, nil
	}
	if password := os.Getenv(EnvKeyPassword); password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash admin password: %w", err)
		}
		return &adminUsecase{passwordHash: hashed}, nil
	}
	return nil, fmt.Errorf("%s or %s must be set", EnvKeyPasswordHash, EnvKeyPassword)
}

// NewAdminUsecaseWithHash は指定されたbcryptハッシュでadminUsecaseを生成します。
// 主にテストおよびDIでの明示的な構成に使用します。
func NewAdminUsecaseWithHash(passwordHash []byte) *adminUsecase {
	return &adminUsecase{passwordHash: passwordHash}
}

// Authenticate は管理者パスワードを検証します。
// タイミング攻撃を防止するため、ハッシュ未設定時でもbcrypt比較を実行します。
func (u *adminUsecase) Authenticate(ctx context.Context, password string) error {
	// ハッシュ未設定時のタイミング攻撃緩和用ダミーハッシュ
	passwordHash := []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")
	configured := len(u.passwordHash) > 0
	if configured {
		passwordHash = u.passwordHash
	}

	compareErr := bcrypt.CompareHashAndPassword(passwordHash, []byte(password))
	if !configured || compareErr != nil {
		return ErrIncorrectPassword
	}
	return nil
}
