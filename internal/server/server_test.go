package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/visionary-gallery/pkg/domain"
	"github.com/shouni/visionary-gallery/pkg/gallery"
	"github.com/shouni/visionary-gallery/pkg/service"
	"github.com/shouni/visionary-gallery/pkg/storage"
	"github.com/shouni/visionary-gallery/pkg/transfer"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type generatorFunc func(ctx context.Context, req domain.GenerationRequest) (string, error)

func (f generatorFunc) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	return f(ctx, req)
}

type testEnv struct {
	srv   *httptest.Server
	store *gallery.Store
}

func newTestEnv(t *testing.T, slot storage.Slot, gen generatorFunc) *testEnv {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	n := 0
	store := gallery.NewStore(context.Background(), slot, gallery.DefaultSlotKey,
		gallery.WithClock(func() time.Time { return fixedNow }),
		gallery.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	)
	if gen == nil {
		gen = func(ctx context.Context, req domain.GenerationRequest) (string, error) {
			return "data:image/png;base64,iVBORw==", nil
		}
	}
	svc, err := service.New(service.Deps{
		Log:       log,
		Store:     store,
		Generator: gen,
		Uploader:  transfer.NewUploader(),
		Confirmer: service.ContextConfirmer,
		Notifier:  RequestNotifier{},
	})
	require.NoError(t, err)

	s := New(log, svc, ":0", transfer.MaxUploadBytes, nil)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return &testEnv{srv: ts, store: store}
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

type itemsEnvelope struct {
	Status  string               `json:"status"`
	Data    []domain.GalleryItem `json:"data"`
	Message string               `json:"message"`
}

type itemEnvelope struct {
	Status  string             `json:"status"`
	Data    domain.GalleryItem `json:"data"`
	Message string             `json:"message"`
}

func TestServer_ListItems(t *testing.T) {
	env := newTestEnv(t, storage.NewMemorySlot(0), nil)

	t.Run("全件", func(t *testing.T) {
		resp, err := http.Get(env.srv.URL + "/api/items")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body itemsEnvelope
		decode(t, resp, &body)
		assert.Len(t, body.Data, 8)
	})

	t.Run("カテゴリで絞り込むのだ", func(t *testing.T) {
		resp, err := http.Get(env.srv.URL + "/api/items?category=anime")
		require.NoError(t, err)

		var body itemsEnvelope
		decode(t, resp, &body)
		require.Len(t, body.Data, 2)
		for _, it := range body.Data {
			assert.Equal(t, domain.CategoryAnime, it.Category)
		}
	})

	t.Run("未知のカテゴリは 400", func(t *testing.T) {
		resp, err := http.Get(env.srv.URL + "/api/items?category=nature")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestServer_Categories(t *testing.T) {
	env := newTestEnv(t, storage.NewMemorySlot(0), nil)

	resp, err := http.Get(env.srv.URL + "/api/categories")
	require.NoError(t, err)
	var body struct {
		Data []CategoryResponse `json:"data"`
	}
	decode(t, resp, &body)
	require.Len(t, body.Data, 7)
	assert.Equal(t, CategoryResponse{ID: domain.CategoryAll, Label: "全部作品"}, body.Data[0])
}

func TestServer_Generate(t *testing.T) {
	post := func(t *testing.T, env *testEnv, payload string) *http.Response {
		resp, err := http.Post(env.srv.URL+"/api/items/generate", echoJSON, strings.NewReader(payload))
		require.NoError(t, err)
		return resp
	}

	t.Run("成功すると 201 で作品を返すのだ", func(t *testing.T) {
		env := newTestEnv(t, storage.NewMemorySlot(0), nil)
		resp := post(t, env, `{"prompt":"赛博城市","category":"Anime","aspectRatio":"16:9"}`)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var body itemEnvelope
		decode(t, resp, &body)
		assert.Equal(t, "id-1", body.Data.ID)
		assert.Equal(t, domain.SourceGenerated, body.Data.Source)
		assert.Equal(t, 9, env.store.Len())
	})

	t.Run("空のプロンプトは 400", func(t *testing.T) {
		env := newTestEnv(t, storage.NewMemorySlot(0), nil)
		resp := post(t, env, `{"prompt":"   ","category":"Anime","aspectRatio":"1:1"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body ErrorResponse
		decode(t, resp, &body)
		assert.Contains(t, body.Details, domain.MsgPromptRequired)
		assert.Equal(t, 8, env.store.Len())
	})

	t.Run("生成失敗は 502 で何も追加しないのだ", func(t *testing.T) {
		env := newTestEnv(t, storage.NewMemorySlot(0), func(ctx context.Context, req domain.GenerationRequest) (string, error) {
			return "", &domain.GenerationError{Err: domain.ErrNoImageData}
		})
		resp := post(t, env, `{"prompt":"x","category":"Poster","aspectRatio":"1:1"}`)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

		var body ErrorResponse
		decode(t, resp, &body)
		assert.Equal(t, domain.MsgGenerationFailed, body.Details)
		assert.Equal(t, 8, env.store.Len())
	})

	t.Run("実行中は 409", func(t *testing.T) {
		env := newTestEnv(t, storage.NewMemorySlot(0), func(ctx context.Context, req domain.GenerationRequest) (string, error) {
			return "", domain.ErrGenerationInProgress
		})
		resp := post(t, env, `{"prompt":"x","category":"Poster","aspectRatio":"1:1"}`)
		resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("壊れた JSON は 400", func(t *testing.T) {
		env := newTestEnv(t, storage.NewMemorySlot(0), nil)
		resp := post(t, env, `{"prompt":`)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

const echoJSON = "application/json"

func multipartBody(t *testing.T, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := new(bytes.Buffer)
	w := multipart.NewWriter(buf)
	part, err := w.CreateFormFile("file", "photo.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(0, 0, color.RGBA{255, 255, 0, 255})
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestServer_Upload(t *testing.T) {
	t.Run("画像をアップロードするとカテゴリ All で追加されるのだ", func(t *testing.T) {
		env := newTestEnv(t, storage.NewMemorySlot(0), nil)
		body, ct := multipartBody(t, tinyPNG(t))

		resp, err := http.Post(env.srv.URL+"/api/items/upload", ct, body)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var got itemEnvelope
		decode(t, resp, &got)
		assert.Equal(t, domain.CategoryAll, got.Data.Category)
		assert.Equal(t, domain.UploadPrompt, got.Data.Prompt)
		assert.True(t, strings.HasPrefix(got.Data.URL, "data:image/png;base64,"))
	})

	t.Run("画像でなければ 400", func(t *testing.T) {
		env := newTestEnv(t, storage.NewMemorySlot(0), nil)
		body, ct := multipartBody(t, []byte("plain text"))

		resp, err := http.Post(env.srv.URL+"/api/items/upload", ct, body)
		require.NoError(t, err)
		var got ErrorResponse
		decode(t, resp, &got)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, got.Details, domain.MsgUploadNotImage)
	})

	t.Run("上限を 1 バイト超えるファイルは 400 で追加されないのだ", func(t *testing.T) {
		env := newTestEnv(t, storage.NewMemorySlot(0), nil)
		big := make([]byte, transfer.MaxUploadBytes+1)
		copy(big, tinyPNG(t))
		body, ct := multipartBody(t, big)

		resp, err := http.Post(env.srv.URL+"/api/items/upload", ct, body)
		require.NoError(t, err)
		var got ErrorResponse
		decode(t, resp, &got)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, got.Details, domain.MsgUploadTooLarge)
		assert.Equal(t, 8, env.store.Len())
	})

	t.Run("本文が大きすぎればフォームを解析せず 413 なのだ", func(t *testing.T) {
		env := newTestEnv(t, storage.NewMemorySlot(0), nil)
		body, ct := multipartBody(t, make([]byte, 2*transfer.MaxUploadBytes))
		req := httptest.NewRequest(http.MethodPost, "/api/items/upload", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()

		env.srv.Config.Handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Equal(t, 8, env.store.Len())
	})

	t.Run("容量超過は message で通知するのだ", func(t *testing.T) {
		env := newTestEnv(t, storage.NewMemorySlot(1024), nil)
		body, ct := multipartBody(t, tinyPNG(t))

		resp, err := http.Post(env.srv.URL+"/api/items/upload", ct, body)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var got itemEnvelope
		decode(t, resp, &got)
		assert.Equal(t, domain.MsgStorageFull, got.Message)
		assert.Equal(t, 9, env.store.Len())
	})
}

func TestUploadBodyLimit(t *testing.T) {
	assert.Equal(t, "4160K", uploadBodyLimit(transfer.MaxUploadBytes))
	assert.Equal(t, "65K", uploadBodyLimit(1))
}

func TestServer_DeleteAndReset(t *testing.T) {
	env := newTestEnv(t, storage.NewMemorySlot(0), nil)

	do := func(method, path string) *http.Response {
		req, err := http.NewRequest(method, env.srv.URL+path, nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		return resp
	}

	resp := do(http.MethodDelete, "/api/items/init-1")
	resp.Body.Close()
	assert.Equal(t, http.StatusPreconditionRequired, resp.StatusCode)
	assert.Equal(t, 8, env.store.Len())

	resp = do(http.MethodDelete, "/api/items/init-1?confirm=true")
	var del struct {
		Data DeleteResponse `json:"data"`
	}
	decode(t, resp, &del)
	assert.True(t, del.Data.Deleted)
	assert.Equal(t, 7, env.store.Len())

	resp = do(http.MethodDelete, "/api/items/init-1?confirm=true")
	decode(t, resp, &del)
	assert.False(t, del.Data.Deleted, "deleting twice is a no-op")

	resp = do(http.MethodGet, "/api/items/init-1")
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(http.MethodPost, "/api/reset")
	resp.Body.Close()
	assert.Equal(t, http.StatusPreconditionRequired, resp.StatusCode)
	assert.Equal(t, 7, env.store.Len())

	resp = do(http.MethodPost, "/api/reset?confirm=true")
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, gallery.SeedItems(fixedNow), env.store.Items())
}

func TestServer_Download(t *testing.T) {
	env := newTestEnv(t, storage.NewMemorySlot(0), nil)
	item, _ := env.store.Add(context.Background(), "data:image/png;base64,iVBORw==", "p", domain.CategoryPoster, domain.SourceGenerated)

	resp, err := http.Get(env.srv.URL + "/api/items/" + item.ID + "/download")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "visionary-Poster-")
	data, _ := io.ReadAll(resp.Body)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data)

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	resp2, err := client.Get(env.srv.URL + "/api/items/init-1/download")
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusFound, resp2.StatusCode)
	assert.Contains(t, resp2.Header.Get("Location"), "images.unsplash.com")
}

func TestServer_Metrics(t *testing.T) {
	env := newTestEnv(t, storage.NewMemorySlot(0), nil)
	_, err := http.Post(env.srv.URL+"/api/items/generate", echoJSON,
		strings.NewReader(`{"prompt":"x","category":"Anime","aspectRatio":"1:1"}`))
	require.NoError(t, err)

	resp, err := http.Get(env.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	assert.Contains(t, string(raw), `visionary_generations_total{result="success"} 1`)
	assert.Contains(t, string(raw), "visionary_gallery_items 9")
}
