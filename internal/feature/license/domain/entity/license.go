// Package entity はlicenseフィーチャーのドメインモデルを定義します。
package entity

import "time"

// License はレジストリに登録された免許証レコードを表します。
type License struct {
	ID        uint
	DLNumber  string    // 免許証番号
	Name      string    // 氏名
	ValidTill string    // 有効期限（YYYY-MM-DD形式の文字列）
	ImagePath string    // 登録時の切り出し画像パス
	CreatedAt time.Time // 登録日時
}

// Fields は免許証画像から抽出された3つのフィールドを表します。
// ユーザーが確認・編集した後、検証に使用されます。
type Fields struct {
	DLNumber  string
	Name      string
	ValidTill string
}
