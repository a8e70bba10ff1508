package generator

import (
	"context"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/visionary-gallery/pkg/domain"
	"google.golang.org/genai"
)

// ImageModel は Gemini へパーツ列を送って応答を受け取る通信クライアントです。
// go-gemini-client の GenerativeModel と同じシグネチャを持ちます。
type ImageModel interface {
	GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error)
}

// ImageExecutor は、画像生成リクエストを実行し、応答から画像を取り出すためのインターフェースです。
type ImageExecutor interface {
	// ExecuteRequest は、指定されたパーツとオプションで画像生成を実行し、最初の画像を返します。
	ExecuteRequest(ctx context.Context, parts []*genai.Part, opts gemini.GenerateOptions) (*domain.ImageResponse, error)
}

// ImageGenerator はサービス層が利用する生成ゲートウェイの窓口です。
type ImageGenerator interface {
	// Generate はプロンプトを補強して画像を生成し、data URI として返します。
	Generate(ctx context.Context, req domain.GenerationRequest) (string, error)
}
