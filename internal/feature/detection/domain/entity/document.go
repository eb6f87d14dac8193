// Package entity はdetectionフィーチャーのドメインモデルを定義します。
package entity

// BoundingBox は画像内で検出された書類の領域を正規化座標（0.0 ~ 1.0）で表します。
type BoundingBox struct {
	X1 float64 // 左端
	Y1 float64 // 上端
	X2 float64 // 右端
	Y2 float64 // 下端
}

// DetectedDocument は検出・切り出しが完了した書類画像を表します。
type DetectedDocument struct {
	CroppedPath string  // 切り出し画像のディスク上のパス
	CroppedURL  string  // 切り出し画像の公開URL
	Confidence  float64 // 検出信頼度（0.0 ~ 1.0）
}
