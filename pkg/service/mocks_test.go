package service

import (
	"context"
	"io"

	"github.com/shouni/visionary-gallery/pkg/domain"
	"github.com/shouni/visionary-gallery/pkg/storage"
)

// --- Mocks ---

type mockGenerator struct {
	generateFunc func(ctx context.Context, req domain.GenerationRequest) (string, error)
	requests     []domain.GenerationRequest
}

func (m *mockGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	m.requests = append(m.requests, req)
	if m.generateFunc != nil {
		return m.generateFunc(ctx, req)
	}
	return "data:image/png;base64,AAAA", nil
}

type mockUploader struct {
	uri string
	err error
}

func (m *mockUploader) Load(ctx context.Context, path string) (string, error) {
	return m.uri, m.err
}

func (m *mockUploader) LoadReader(r io.Reader, size int64) (string, error) {
	return m.uri, m.err
}

type mockDownloader struct {
	saved []domain.GalleryItem
}

func (m *mockDownloader) Save(ctx context.Context, item domain.GalleryItem, dir string) (string, error) {
	m.saved = append(m.saved, item)
	return dir + "/out.png", nil
}

type mockConfirmer struct {
	answer   bool
	err      error
	messages []string
}

func (m *mockConfirmer) Confirm(ctx context.Context, message string) (bool, error) {
	m.messages = append(m.messages, message)
	return m.answer, m.err
}

type mockNotifier struct {
	messages []string
}

func (m *mockNotifier) Notify(ctx context.Context, message string) {
	m.messages = append(m.messages, message)
}

// brokenSlot は読み込みは空、書き込みは常に失敗するスロットです。
type brokenSlot struct {
	err error
}

func (b *brokenSlot) Read(ctx context.Context, key string) ([]byte, error) {
	return nil, storage.ErrNotFound
}

func (b *brokenSlot) Write(ctx context.Context, key string, data []byte) error {
	return b.err
}

func (b *brokenSlot) Remove(ctx context.Context, key string) error {
	return b.err
}
