package generator

import (
	"fmt"
)

// GeminiImageCore は Gemini への送信と応答解析を担う基盤クラスです。
type GeminiImageCore struct {
	aiClient ImageModel
	model    string
}

// NewGeminiImageCore は依存関係を注入して GeminiImageCore を初期化します。
func NewGeminiImageCore(aiClient ImageModel, model string) (*GeminiImageCore, error) {
	if aiClient == nil {
		return nil, fmt.Errorf("aiClient is required")
	}
	if model == "" {
		model = DefaultModel
	}

	return &GeminiImageCore{
		aiClient: aiClient,
		model:    model,
	}, nil
}

// Model は使用するモデル名を返します。
func (c *GeminiImageCore) Model() string {
	return c.model
}
