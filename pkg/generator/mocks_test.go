package generator

import (
	"context"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/visionary-gallery/pkg/domain"
	"google.golang.org/genai"
)

// --- Mocks ---

type mockAIClient struct {
	generateWithPartsFunc func(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error)
	calls                 int
}

func (m *mockAIClient) GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
	m.calls++
	if m.generateWithPartsFunc != nil {
		return m.generateWithPartsFunc(ctx, model, parts, opts)
	}
	return imageResponse("image/png", []byte("fake")), nil
}

type mockExecutor struct {
	executeFunc func(ctx context.Context, parts []*genai.Part, opts gemini.GenerateOptions) (*domain.ImageResponse, error)
}

func (m *mockExecutor) ExecuteRequest(ctx context.Context, parts []*genai.Part, opts gemini.GenerateOptions) (*domain.ImageResponse, error) {
	if m.executeFunc != nil {
		return m.executeFunc(ctx, parts, opts)
	}
	return &domain.ImageResponse{Data: []byte("fake"), MimeType: "image/png"}, nil
}

func imageResponse(mime string, data []byte) *gemini.Response {
	return &gemini.Response{
		RawResponse: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{
					Parts: []*genai.Part{{InlineData: &genai.Blob{MIMEType: mime, Data: data}}},
				},
			}},
		},
	}
}
