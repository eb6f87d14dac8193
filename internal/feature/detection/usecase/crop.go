package usecase

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	// デコーダ登録のためのブランクインポート
	_ "image/png"

	"license_backend/internal/feature/detection/domain/entity"
)

// jpegQuality は切り出し画像の再エンコード品質です。
const jpegQuality = 90

// subImager は矩形の部分画像を返せる画像型です。
// 標準ライブラリのRGBA/YCbCr等の具象型が実装しています。
type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// cropImage は画像バイト列を検出領域で切り出し、JPEGで再エンコードして返します。
// 正規化座標は画像サイズに合わせてピクセル座標へ変換します。
func cropImage(imageData []byte, box *entity.BoundingBox) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())

	rect := image.Rect(
		bounds.Min.X+int(box.X1*w),
		bounds.Min.Y+int(box.Y1*h),
		bounds.Min.X+int(box.X2*w),
		bounds.Min.Y+int(box.Y2*h),
	).Intersect(bounds)
	if rect.Empty() {
		return nil, fmt.Errorf("detected region is empty")
	}

	si, ok := img.(subImager)
	if !ok {
		return nil, fmt.Errorf("image type %T does not support cropping", img)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, si.SubImage(rect), &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode cropped image: %w", err)
	}
	return buf.Bytes(), nil
}
