package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"

	"github.com/shouni/visionary-gallery/pkg/domain"
	"github.com/shouni/visionary-gallery/pkg/storage"
)

// DefaultSlotKey は作品リストを保存するスロット名です。
const DefaultSlotKey = "visionary_gallery"

// SaveResult は変更後の永続化結果です。失敗してもメモリ上の状態は巻き戻されません。
type SaveResult struct {
	Err error
}

// OK はスロットが現在のリストを保持しているかどうかを返します。
func (r SaveResult) OK() bool { return r.Err == nil }

// QuotaExceeded は容量超過による失敗かどうかを返します。
func (r SaveResult) QuotaExceeded() bool { return errors.Is(r.Err, storage.ErrQuotaExceeded) }

// Store は作品リストを所有し、変更のたびにリスト全体をスロットへ書き戻します。
type Store struct {
	mu    sync.RWMutex
	slot  storage.Slot
	key   string
	items []domain.GalleryItem
	now   func() time.Time
	newID func() string
}

// Option は Store の生成オプションです。
type Option func(*Store)

// WithClock は現在時刻の取得関数を差し替えます。
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator は ID 採番関数を差し替えます。
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// NewStore はスロットから作品リストを読み込んで Store を生成します。
// 読み込みに失敗した場合はシード作品で初期化し、エラーは返しません。
func NewStore(ctx context.Context, slot storage.Slot, key string, opts ...Option) *Store {
	if key == "" {
		key = DefaultSlotKey
	}
	s := &Store{
		slot:  slot,
		key:   key,
		now:   time.Now,
		newID: newItemID,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.items = s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) []domain.GalleryItem {
	data, err := s.slot.Read(ctx, s.key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.WarnContext(ctx, "保存データの読み込みに失敗しました。シード作品を使用します",
				"error", &domain.StorageReadError{Key: s.key, Err: err})
		}
		return SeedItems(s.now())
	}

	items, err := decodeItems(data)
	if err != nil {
		slog.WarnContext(ctx, "保存データを解析できませんでした。シード作品を使用します",
			"error", &domain.StorageReadError{Key: s.key, Err: err})
		return SeedItems(s.now())
	}
	if len(items) == 0 {
		return SeedItems(s.now())
	}

	slog.DebugContext(ctx, "保存データを読み込みました", "slot", s.key, "count", len(items))
	return items
}

func decodeItems(data []byte) ([]domain.GalleryItem, error) {
	var items []domain.GalleryItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	for i, item := range items {
		if item.ID == "" || !item.Category.Valid() || !item.Source.Valid() {
			return nil, fmt.Errorf("item %d does not match the current schema", i)
		}
	}
	return items, nil
}

// persist は呼び出し側がロックを保持している前提で、リスト全体を書き込みます。
func (s *Store) persist(ctx context.Context) error {
	data, err := json.Marshal(s.items)
	if err != nil {
		return &domain.StorageWriteError{Key: s.key, Err: err}
	}
	if err := s.slot.Write(ctx, s.key, data); err != nil {
		return &domain.StorageWriteError{Key: s.key, Err: err}
	}
	return nil
}

// Add は新しい作品をリストの先頭に追加します。
func (s *Store) Add(ctx context.Context, url, prompt string, category domain.Category, source domain.Source) (domain.GalleryItem, SaveResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := domain.GalleryItem{
		ID:        s.newID(),
		URL:       url,
		Prompt:    prompt,
		Category:  category,
		CreatedAt: s.now().UnixMilli(),
		Source:    source,
	}

	items := make([]domain.GalleryItem, 0, len(s.items)+1)
	items = append(items, item)
	s.items = append(items, s.items...)

	return item, SaveResult{Err: s.persist(ctx)}
}

// Delete は ID が一致する作品を削除します。存在しない場合は何もせず false を返します。
func (s *Store) Delete(ctx context.Context, id string) (bool, SaveResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, idx, found := lo.FindIndexOf(s.items, func(item domain.GalleryItem) bool {
		return item.ID == id
	})
	if !found {
		return false, SaveResult{}
	}

	items := make([]domain.GalleryItem, 0, len(s.items)-1)
	items = append(items, s.items[:idx]...)
	s.items = append(items, s.items[idx+1:]...)

	return true, SaveResult{Err: s.persist(ctx)}
}

// Reset はスロットを削除し、リストをシード作品に戻します。
func (s *Store) Reset(ctx context.Context) SaveResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result *multierror.Error
	if err := s.slot.Remove(ctx, s.key); err != nil {
		result = multierror.Append(result, &domain.StorageWriteError{Key: s.key, Err: err})
	}

	s.items = SeedItems(s.now())
	if err := s.persist(ctx); err != nil {
		result = multierror.Append(result, err)
	}

	return SaveResult{Err: result.ErrorOrNil()}
}

// Filter はカテゴリが一致する作品を元の順序のまま返します。All の場合は全件を返します。
func (s *Store) Filter(category domain.Category) []domain.GalleryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if category == domain.CategoryAll {
		return append([]domain.GalleryItem{}, s.items...)
	}
	return lo.Filter(s.items, func(item domain.GalleryItem, _ int) bool {
		return item.Category == category
	})
}

// Items は全作品のコピーを返します。
func (s *Store) Items() []domain.GalleryItem {
	return s.Filter(domain.CategoryAll)
}

// Get は ID に一致する作品を返します。
func (s *Store) Get(id string) (domain.GalleryItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lo.Find(s.items, func(item domain.GalleryItem) bool {
		return item.ID == id
	})
}

// Len は作品数を返します。
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func newItemID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	return id.String()
}
