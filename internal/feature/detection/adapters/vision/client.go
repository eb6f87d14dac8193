// Package vision はGoogle Cloud Vision APIを使用した書類位置検出クライアントを提供します。
package vision

import (
	"context"
	"fmt"

	gvision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"license_backend/internal/feature/detection/domain/entity"
	"license_backend/internal/feature/detection/usecase"
)

// VisionDocumentLocator はGoogle Cloud Vision APIのオブジェクトローカライズで
// 画像内の書類位置を検出します。
type VisionDocumentLocator struct {
	client *gvision.ImageAnnotatorClient
}

// VisionDocumentLocatorがDocumentLocatorを実装していることをコンパイル時に検証します。
var _ usecase.DocumentLocator = (*VisionDocumentLocator)(nil)

// NewVisionDocumentLocator はADCを使用してVisionDocumentLocatorの新しいインスタンスを生成します。
func NewVisionDocumentLocator(ctx context.Context) (*VisionDocumentLocator, error) {
	client, err := gvision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &VisionDocumentLocator{client: client}, nil
}

// Close はVision APIクライアントを解放します。
func (v *VisionDocumentLocator) Close() error {
	return v.client.Close()
}

// LocateDocument は画像バイト列から最も確度の高いオブジェクト領域を検出します。
// 書類が見つからない場合は (nil, 0, nil) を返します。
func (v *VisionDocumentLocator) LocateDocument(ctx context.Context, imageData []byte) (*entity.BoundingBox, float64, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: imageData},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_OBJECT_LOCALIZATION},
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, 0, fmt.Errorf("vision API request failed: %w", err)
	}

	if len(resp.Responses) == 0 {
		return nil, 0, nil
	}
	if resp.Responses[0].Error != nil {
		return nil, 0, fmt.Errorf("vision API error: %s", resp.Responses[0].Error.Message)
	}

	// 最も信頼度の高いオブジェクトを書類候補として採用する
	var (
		best      *visionpb.LocalizedObjectAnnotation
		bestScore float32
	)
	for _, obj := range resp.Responses[0].LocalizedObjectAnnotations {
		if obj.Score > bestScore {
			best = obj
			bestScore = obj.Score
		}
	}
	if best == nil || best.BoundingPoly == nil || len(best.BoundingPoly.NormalizedVertices) == 0 {
		return nil, 0, nil
	}

	box := polyToBox(best.BoundingPoly.NormalizedVertices)
	return box, float64(bestScore), nil
}

// polyToBox は正規化頂点列を外接矩形に変換します。
func polyToBox(vertices []*visionpb.NormalizedVertex) *entity.BoundingBox {
	box := &entity.BoundingBox{X1: 1, Y1: 1, X2: 0, Y2: 0}
	for _, v := range vertices {
		x := float64(v.X)
		y := float64(v.Y)
		if x < box.X1 {
			box.X1 = x
		}
		if y < box.Y1 {
			box.Y1 = y
		}
		if x > box.X2 {
			box.X2 = x
		}
		if y > box.Y2 {
			box.Y2 = y
		}
	}
	return box
}
