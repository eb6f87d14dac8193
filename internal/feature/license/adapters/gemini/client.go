// Package gemini はGoogle Gemini APIを使用したフィールド構造化クライアントを提供します。
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"license_backend/internal/feature/license/domain/entity"
	"license_backend/internal/feature/license/usecase"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"

	// StructurePromptTemplate はOCRテキストを免許証フィールドへ構造化するプロンプトです。
	// JSON以外を出力させないよう指示し、読み取れないフィールドは空文字列にします。
	StructurePromptTemplate = `The following text was read from a driving license by OCR.
Extract the license number, the holder's name, and the expiry date.
Respond with a single JSON object and nothing else, in this exact shape:
{"dl_number": "", "name": "", "valid_till": ""}
valid_till must be formatted as YYYY-MM-DD. Use an empty string for any field
that cannot be read.

OCR text:
%s`
)

// structuredFields はGeminiのJSON応答のデコード先です。
type structuredFields struct {
	DLNumber  string `json:"dl_number"`
	Name      string `json:"name"`
	ValidTill string `json:"valid_till"`
}

// GeminiStructurer はGoogle Gemini APIを使用してOCRテキストを構造化します。
type GeminiStructurer struct {
	client *genai.Client
	model  string
}

// GeminiStructurerがFieldStructurerを実装していることをコンパイル時に検証します。
var _ usecase.FieldStructurer = (*GeminiStructurer)(nil)

// NewGeminiStructurer はADCを使用してGeminiStructurerの新しいインスタンスを生成します。
// 環境変数 GOOGLE_GENAI_USE_VERTEXAI, GOOGLE_CLOUD_PROJECT, GOOGLE_CLOUD_LOCATION が必要です。
func NewGeminiStructurer(ctx context.Context) (*GeminiStructurer, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiStructurer{client: client, model: DefaultModel}, nil
}

// StructureFields はOCRの生テキストから3つのフィールドを抽出します。
func (g *GeminiStructurer) StructureFields(ctx context.Context, text string) (entity.Fields, error) {
	prompt := fmt.Sprintf(StructurePromptTemplate, text)
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return entity.Fields{}, fmt.Errorf("gemini API request failed: %w", err)
	}

	return parseFields(resp.Text())
}

// parseFields はモデル応答からJSONオブジェクトを取り出してデコードします。
// コードフェンス等で囲まれていても、最初のJSONオブジェクトを拾います。
func parseFields(raw string) (entity.Fields, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return entity.Fields{}, fmt.Errorf("no JSON object in model response: %q", raw)
	}

	var sf structuredFields
	if err := json.Unmarshal([]byte(raw[start:end+1]), &sf); err != nil {
		return entity.Fields{}, fmt.Errorf("failed to decode model response: %w", err)
	}

	return entity.Fields{
		DLNumber:  sf.DLNumber,
		Name:      sf.Name,
		ValidTill: sf.ValidTill,
	}, nil
}
