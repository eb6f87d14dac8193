// Package vision はGoogle Cloud Vision APIを使用したOCRクライアントを提供します。
package vision

import (
	"context"
	"fmt"

	gvision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"license_backend/internal/feature/license/usecase"
)

// VisionTextRecognizer はGoogle Cloud Vision APIのドキュメントテキスト検出で
// 免許証画像からテキストを読み取ります。
type VisionTextRecognizer struct {
	client *gvision.ImageAnnotatorClient
}

// VisionTextRecognizerがTextRecognizerを実装していることをコンパイル時に検証します。
var _ usecase.TextRecognizer = (*VisionTextRecognizer)(nil)

// NewVisionTextRecognizer はADCを使用してVisionTextRecognizerの新しいインスタンスを生成します。
func NewVisionTextRecognizer(ctx context.Context) (*VisionTextRecognizer, error) {
	client, err := gvision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &VisionTextRecognizer{client: client}, nil
}

// Close はVision APIクライアントを解放します。
func (v *VisionTextRecognizer) Close() error {
	return v.client.Close()
}

// RecognizeText は画像バイト列から読み取った生テキストを返します。
// テキストが検出されない場合は空文字列を返します。
func (v *VisionTextRecognizer) RecognizeText(ctx context.Context, imageData []byte) (string, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: imageData},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return "", fmt.Errorf("vision API request failed: %w", err)
	}

	if len(resp.Responses) == 0 {
		return "", nil
	}
	if resp.Responses[0].Error != nil {
		return "", fmt.Errorf("vision API error: %s", resp.Responses[0].Error.Message)
	}

	annotation := resp.Responses[0].FullTextAnnotation
	if annotation == nil {
		return "", nil
	}
	return annotation.Text, nil
}
