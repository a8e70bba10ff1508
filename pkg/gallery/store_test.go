package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/visionary-gallery/pkg/domain"
	"github.com/shouni/visionary-gallery/pkg/storage"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, slot storage.Slot) *Store {
	t.Helper()
	n := 0
	return NewStore(context.Background(), slot, DefaultSlotKey,
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	)
}

func persisted(t *testing.T, slot storage.Slot) []domain.GalleryItem {
	t.Helper()
	data, err := slot.Read(context.Background(), DefaultSlotKey)
	require.NoError(t, err)
	var items []domain.GalleryItem
	require.NoError(t, json.Unmarshal(data, &items))
	return items
}

func countByCategory(items []domain.GalleryItem) map[domain.Category]int {
	counts := make(map[domain.Category]int)
	for _, it := range items {
		counts[it.Category]++
	}
	return counts
}

// errSlot は読み込みが常に失敗するスロットです。
type errSlot struct{ storage.Slot }

func (errSlot) Read(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func TestNewStore_FallsBackToSeed(t *testing.T) {
	ctx := context.Background()

	cases := map[string]func() storage.Slot{
		"スロットが存在しない": func() storage.Slot { return storage.NewMemorySlot(0) },
		"空配列": func() storage.Slot {
			s := storage.NewMemorySlot(0)
			_ = s.Write(ctx, DefaultSlotKey, []byte(`[]`))
			return s
		},
		"null": func() storage.Slot {
			s := storage.NewMemorySlot(0)
			_ = s.Write(ctx, DefaultSlotKey, []byte(`null`))
			return s
		},
		"壊れたJSON": func() storage.Slot {
			s := storage.NewMemorySlot(0)
			_ = s.Write(ctx, DefaultSlotKey, []byte(`[{"id":`))
			return s
		},
		"配列ではない": func() storage.Slot {
			s := storage.NewMemorySlot(0)
			_ = s.Write(ctx, DefaultSlotKey, []byte(`{"items":[]}`))
			return s
		},
		"旧スキーマ": func() storage.Slot {
			s := storage.NewMemorySlot(0)
			_ = s.Write(ctx, DefaultSlotKey, []byte(`[{"id":"1","src":"a.png","tag":"nature"}]`))
			return s
		},
		"読み込みエラー": func() storage.Slot { return errSlot{storage.NewMemorySlot(0)} },
	}

	for name, mk := range cases {
		t.Run(name, func(t *testing.T) {
			store := newTestStore(t, mk())
			items := store.Items()

			require.Len(t, items, 8)
			assert.Equal(t, map[domain.Category]int{
				domain.CategoryLandscape: 2,
				domain.CategoryAnime:     2,
				domain.CategoryCharacter: 1,
				domain.CategoryPoster:    1,
				domain.CategoryProduct:   1,
				domain.CategoryAbstract:  1,
			}, countByCategory(items))
			assert.Equal(t, "init-1", items[0].ID)
			assert.Equal(t, fixedNow.Add(-1000*time.Second).UnixMilli(), items[0].CreatedAt)
		})
	}
}

func TestNewStore_LoadsPersistedItems(t *testing.T) {
	ctx := context.Background()
	slot := storage.NewMemorySlot(0)
	saved := []domain.GalleryItem{
		{ID: "b", URL: "data:image/png;base64,AA", Prompt: "p", Category: domain.CategoryPoster, CreatedAt: 2, Source: domain.SourceGenerated},
		{ID: "a", URL: "data:image/png;base64,BB", Prompt: "", Category: domain.CategoryAll, CreatedAt: 1, Source: domain.SourceUploaded},
	}
	raw, _ := json.Marshal(saved)
	require.NoError(t, slot.Write(ctx, DefaultSlotKey, raw))

	store := newTestStore(t, slot)
	assert.Equal(t, saved, store.Items())
}

func TestStore_Add(t *testing.T) {
	ctx := context.Background()
	slot := storage.NewMemorySlot(0)
	store := newTestStore(t, slot)

	item, res := store.Add(ctx, "data:image/png;base64,AAAA", "赛博城市", domain.CategoryAnime, domain.SourceGenerated)
	require.True(t, res.OK())
	assert.Equal(t, "id-1", item.ID)
	assert.Equal(t, fixedNow.UnixMilli(), item.CreatedAt)

	anime := store.Filter(domain.CategoryAnime)
	require.NotEmpty(t, anime)
	assert.Equal(t, "赛博城市", anime[0].Prompt)
	assert.Equal(t, domain.SourceGenerated, anime[0].Source)

	items := store.Items()
	assert.Len(t, items, 9)
	assert.Equal(t, item, items[0], "new items are prepended")
	assert.Equal(t, items, persisted(t, slot), "slot round-trips the in-memory list")
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	slot := storage.NewMemorySlot(0)
	store := newTestStore(t, slot)

	removed, res := store.Delete(ctx, "init-3")
	require.True(t, removed)
	require.True(t, res.OK())
	once := store.Items()
	assert.Len(t, once, 7)
	_, found := store.Get("init-3")
	assert.False(t, found)

	removed, res = store.Delete(ctx, "init-3")
	assert.False(t, removed)
	assert.True(t, res.OK())
	assert.Equal(t, once, store.Items(), "second delete is a no-op")
	assert.Equal(t, once, persisted(t, slot))
}

func TestStore_Filter(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, storage.NewMemorySlot(0))
	store.Add(ctx, "u1", "a", domain.CategoryLandscape, domain.SourceGenerated)
	store.Add(ctx, "u2", "b", domain.CategoryAbstract, domain.SourceGenerated)
	store.Delete(ctx, "init-6")

	t.Run("All は全件をそのままの順序で返すのだ", func(t *testing.T) {
		assert.Equal(t, store.Items(), store.Filter(domain.CategoryAll))
	})

	t.Run("カテゴリが一致するものだけを順序を保って返すのだ", func(t *testing.T) {
		got := store.Filter(domain.CategoryLandscape)
		ids := make([]string, 0, len(got))
		for _, it := range got {
			assert.Equal(t, domain.CategoryLandscape, it.Category)
			ids = append(ids, it.ID)
		}
		assert.Equal(t, []string{"id-1", "init-1", "init-7"}, ids)
	})

	t.Run("一致なしは空のスライスなのだ", func(t *testing.T) {
		store := newTestStore(t, storage.NewMemorySlot(0))
		got := store.Filter(domain.Category("Portrait"))
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("返り値を変更してもストアは変わらないのだ", func(t *testing.T) {
		got := store.Filter(domain.CategoryAll)
		got[0].Prompt = "mutated"
		assert.NotEqual(t, "mutated", store.Items()[0].Prompt)
	})
}

func TestStore_QuotaExceededKeepsMemory(t *testing.T) {
	ctx := context.Background()
	slot := storage.NewMemorySlot(4096)
	store := newTestStore(t, slot)

	_, res := store.Add(ctx, "data:image/png;base64,small", "ok", domain.CategoryPoster, domain.SourceGenerated)
	require.True(t, res.OK())
	lastGood := persisted(t, slot)

	big := make([]byte, 8192)
	for i := range big {
		big[i] = 'A'
	}
	item, res := store.Add(ctx, "data:image/png;base64,"+string(big), "big", domain.CategoryPoster, domain.SourceGenerated)

	assert.False(t, res.OK())
	assert.True(t, res.QuotaExceeded())
	var we *domain.StorageWriteError
	assert.ErrorAs(t, res.Err, &we)

	assert.Equal(t, item, store.Items()[0], "memory keeps the item even though the write failed")
	assert.Len(t, store.Items(), 10)
	assert.Equal(t, lastGood, persisted(t, slot), "slot keeps the last successful write")
}

func TestStore_Reset(t *testing.T) {
	ctx := context.Background()
	slot := storage.NewMemorySlot(0)
	store := newTestStore(t, slot)
	store.Add(ctx, "u", "p", domain.CategoryAnime, domain.SourceGenerated)
	store.Delete(ctx, "init-1")

	res := store.Reset(ctx)
	require.True(t, res.OK())
	assert.Equal(t, SeedItems(fixedNow), store.Items())
	assert.Equal(t, SeedItems(fixedNow), persisted(t, slot))
}

func TestStore_AddDeleteSequencesKeepSlotInSync(t *testing.T) {
	ctx := context.Background()
	slot := storage.NewMemorySlot(0)
	store := newTestStore(t, slot)

	var added []string
	for i := 0; i < 6; i++ {
		item, _ := store.Add(ctx, fmt.Sprintf("u%d", i), "", domain.Categories[i%len(domain.Categories)], domain.SourceUploaded)
		added = append(added, item.ID)
		if i%2 == 1 {
			store.Delete(ctx, added[i-1])
		}
		assert.Equal(t, store.Items(), store.Filter(domain.CategoryAll))
		assert.Equal(t, store.Items(), persisted(t, slot))
	}
	assert.Equal(t, 8+3, store.Len())
}
