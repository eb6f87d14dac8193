package flow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	clientapi "license_backend/internal/client/api"
)

// DetectionState は検出ページの状態を表します。
type DetectionState string

const (
	DetectionIdle       DetectionState = "idle"
	DetectionSubmitting DetectionState = "submitting"
	DetectionDetected   DetectionState = "detected"
)

// DetectionController は検出ページ（アップロード→切り出しプレビュー）を駆動します。
type DetectionController struct {
	api       WorkflowAPI
	notifier  Notifier
	navigator Navigator

	state        DetectionState
	filename     string
	imageData    []byte
	croppedImage string
	confidence   string
}

// NewDetectionController はDetectionControllerの新しいインスタンスを生成します。
func NewDetectionController(api WorkflowAPI, notifier Notifier, navigator Navigator) *DetectionController {
	return &DetectionController{
		api:       api,
		notifier:  notifier,
		navigator: navigator,
		state:     DetectionIdle,
	}
}

// SelectFile はアップロード対象のファイルを選択します。
// 送信失敗後の再試行でも同じ内容を送れるよう、この時点で全バイトを読み込みます。
func (d *DetectionController) SelectFile(filename string, image io.Reader) error {
	data, err := io.ReadAll(image)
	if err != nil {
		return fmt.Errorf("failed to read selected file: %w", err)
	}
	d.filename = filename
	d.imageData = data
	return nil
}

// Submit は選択中のファイルを検出に送信します。
// ファイル未選択の場合はトランスポートに触れず通知のみ行います。
func (d *DetectionController) Submit(ctx context.Context) {
	if d.imageData == nil {
		d.notifier.Notify("Please select an image file")
		return
	}

	d.state = DetectionSubmitting
	res, err := d.api.DetectDocument(ctx, d.filename, bytes.NewReader(d.imageData))
	if err != nil {
		d.state = DetectionIdle
		var statusErr *clientapi.StatusError
		if errors.As(err, &statusErr) {
			message := statusErr.Message
			if message == "" {
				message = "Detection failed"
			}
			d.notifier.Notify(message)
			return
		}
		d.notifier.Notify("Error processing image: " + err.Error())
		return
	}

	d.croppedImage = res.CroppedImage
	// 信頼度は小数2桁で表示する
	d.confidence = fmt.Sprintf("%.2f", res.Confidence)
	d.state = DetectionDetected
}

// Proceed は検出結果を受け入れて確認ページへ進みます。
func (d *DetectionController) Proceed() {
	if d.state != DetectionDetected {
		return
	}
	d.navigator.Navigate("/verify")
}

// Recrop は検出結果を破棄して最初からやり直します。
func (d *DetectionController) Recrop() {
	d.filename = ""
	d.imageData = nil
	d.croppedImage = ""
	d.confidence = ""
	d.state = DetectionIdle
}

// State は現在の状態を返します。
func (d *DetectionController) State() DetectionState { return d.state }

// CroppedImage は切り出し画像のURLを返します。
func (d *DetectionController) CroppedImage() string { return d.croppedImage }

// Confidence は表示用の信頼度（小数2桁）を返します。
func (d *DetectionController) Confidence() string { return d.confidence }
