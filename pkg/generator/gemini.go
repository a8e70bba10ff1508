package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/visionary-gallery/pkg/domain"
	"github.com/shouni/visionary-gallery/pkg/imgutil"
	"google.golang.org/genai"
)

var (
	_ ImageModel     = (*GenaiModel)(nil)
	_ ImageExecutor  = (*GeminiImageCore)(nil)
	_ ImageGenerator = (*GeminiGenerator)(nil)
)

// GeminiGenerator は、カテゴリ別にプロンプトを補強して画像を 1 枚生成するゲートウェイです。
// 同時に実行できる生成リクエストは 1 件だけです。
type GeminiGenerator struct {
	executor ImageExecutor
	inflight atomic.Bool
}

// NewGeminiGenerator は GeminiGenerator を初期化するのだ。
func NewGeminiGenerator(executor ImageExecutor) (*GeminiGenerator, error) {
	if executor == nil {
		return nil, fmt.Errorf("executor (ImageExecutor) is required")
	}
	return &GeminiGenerator{executor: executor}, nil
}

// Busy は生成リクエストが実行中かどうかを返します。
func (g *GeminiGenerator) Busy() bool {
	return g.inflight.Load()
}

// Generate は画像を生成し、image/png の data URI として返します。
// 外部呼び出しの失敗はすべて domain.GenerationError にまとめて返します。
func (g *GeminiGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", &domain.ValidationError{Field: "prompt", Message: domain.MsgPromptRequired}
	}
	if !g.inflight.CompareAndSwap(false, true) {
		return "", domain.ErrGenerationInProgress
	}
	defer g.inflight.Store(false)

	prompt := BuildPrompt(req.Prompt, req.Category)
	opts := gemini.GenerateOptions{
		AspectRatio: string(req.AspectRatio),
	}

	slog.InfoContext(ctx, "Geminiに画像生成をリクエストします",
		"category", req.Category, "aspect_ratio", req.AspectRatio)

	resp, err := g.executor.ExecuteRequest(ctx, []*genai.Part{{Text: prompt}}, opts)
	if err != nil {
		slog.ErrorContext(ctx, "画像生成に失敗しました", "error", err)
		return "", &domain.GenerationError{Err: err}
	}
	if resp == nil || len(resp.Data) == 0 {
		return "", &domain.GenerationError{Err: domain.ErrNoImageData}
	}

	slog.InfoContext(ctx, "画像生成が完了したのだ", "bytes", len(resp.Data), "mime_type", resp.MimeType)
	return imgutil.EncodeDataURI(ResultMimeType, resp.Data), nil
}
