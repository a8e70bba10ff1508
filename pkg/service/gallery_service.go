package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/shouni/visionary-gallery/pkg/domain"
	"github.com/shouni/visionary-gallery/pkg/gallery"
)

// GalleryService は画面の操作をギャラリーストアと生成ゲートウェイの呼び出しにまとめます。
type GalleryService struct {
	log        *slog.Logger
	store      *gallery.Store
	generator  ImageGenerator
	uploader   ImageUploader
	downloader ImageDownloader
	confirmer  Confirmer
	notifier   Notifier
	validate   *validator.Validate
}

// Deps は GalleryService の依存関係です。Confirmer と Notifier は省略できます。
type Deps struct {
	Log        *slog.Logger
	Store      *gallery.Store
	Generator  ImageGenerator
	Uploader   ImageUploader
	Downloader ImageDownloader
	Confirmer  Confirmer
	Notifier   Notifier
}

// New は GalleryService を初期化します。
func New(d Deps) (*GalleryService, error) {
	if d.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Confirmer == nil {
		d.Confirmer = AlwaysConfirm
	}
	if d.Notifier == nil {
		d.Notifier = NotifyFunc(func(context.Context, string) {})
	}
	return &GalleryService{
		log:        d.Log,
		store:      d.Store,
		generator:  d.Generator,
		uploader:   d.Uploader,
		downloader: d.Downloader,
		confirmer:  d.Confirmer,
		notifier:   d.Notifier,
		validate:   NewValidator(),
	}, nil
}

// Generate は入力を検証して画像を生成し、成功した場合だけギャラリーへ追加します。
func (s *GalleryService) Generate(ctx context.Context, req domain.GenerationRequest) (domain.GalleryItem, error) {
	const op = "service.GalleryService.Generate"
	log := s.log.With(slog.String("op", op))

	req.Prompt = strings.TrimSpace(req.Prompt)
	if err := s.validate.Struct(req); err != nil {
		return domain.GalleryItem{}, AsValidationError(err)
	}
	if s.generator == nil {
		return domain.GalleryItem{}, fmt.Errorf("%s: generator is not configured", op)
	}

	uri, err := s.generator.Generate(ctx, req)
	if err != nil {
		log.WarnContext(ctx, "画像を生成できませんでした", "error", err)
		return domain.GalleryItem{}, err
	}

	item, res := s.store.Add(ctx, uri, req.Prompt, req.Category, domain.SourceGenerated)
	s.report(ctx, op, res)
	log.InfoContext(ctx, "生成画像を追加しました", "id", item.ID, "category", item.Category)
	return item, nil
}

// Upload はローカルファイルまたは gs:// などの URI を読み込み、カテゴリ All の作品として追加します。
func (s *GalleryService) Upload(ctx context.Context, path string) (domain.GalleryItem, error) {
	const op = "service.GalleryService.Upload"
	if s.uploader == nil {
		return domain.GalleryItem{}, fmt.Errorf("%s: uploader is not configured", op)
	}

	uri, err := s.uploader.Load(ctx, path)
	if err != nil {
		return domain.GalleryItem{}, err
	}
	return s.addUploaded(ctx, op, uri), nil
}

// UploadReader はストリームから読み込んだ画像を追加します。
func (s *GalleryService) UploadReader(ctx context.Context, r io.Reader, size int64) (domain.GalleryItem, error) {
	const op = "service.GalleryService.UploadReader"
	if s.uploader == nil {
		return domain.GalleryItem{}, fmt.Errorf("%s: uploader is not configured", op)
	}

	uri, err := s.uploader.LoadReader(r, size)
	if err != nil {
		return domain.GalleryItem{}, err
	}
	return s.addUploaded(ctx, op, uri), nil
}

func (s *GalleryService) addUploaded(ctx context.Context, op, uri string) domain.GalleryItem {
	item, res := s.store.Add(ctx, uri, domain.UploadPrompt, domain.CategoryAll, domain.SourceUploaded)
	s.report(ctx, op, res)
	s.log.InfoContext(ctx, "アップロード画像を追加しました", slog.String("op", op), "id", item.ID)
	return item
}

// Delete は確認のうえで作品を削除します。確認が得られなければ何もせず false を返します。
func (s *GalleryService) Delete(ctx context.Context, id string) (bool, error) {
	const op = "service.GalleryService.Delete"

	ok, err := s.confirmer.Confirm(ctx, domain.MsgConfirmDelete)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return false, nil
	}

	removed, res := s.store.Delete(ctx, id)
	s.report(ctx, op, res)
	return removed, nil
}

// Reset は確認のうえでギャラリーをシード作品に戻します。
func (s *GalleryService) Reset(ctx context.Context) (bool, error) {
	const op = "service.GalleryService.Reset"

	ok, err := s.confirmer.Confirm(ctx, domain.MsgConfirmReset)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return false, nil
	}

	s.report(ctx, op, s.store.Reset(ctx))
	s.log.InfoContext(ctx, "ギャラリーを初期状態に戻しました", slog.String("op", op))
	return true, nil
}

// List はカテゴリで絞り込んだ作品を返します。
func (s *GalleryService) List(category domain.Category) []domain.GalleryItem {
	return s.store.Filter(category)
}

// Get は ID に一致する作品を返します。
func (s *GalleryService) Get(id string) (domain.GalleryItem, error) {
	item, ok := s.store.Get(id)
	if !ok {
		return domain.GalleryItem{}, fmt.Errorf("%q: %w", id, domain.ErrItemNotFound)
	}
	return item, nil
}

// Download は作品の画像を dir に保存し、保存先のパスを返します。
func (s *GalleryService) Download(ctx context.Context, id, dir string) (string, error) {
	const op = "service.GalleryService.Download"
	if s.downloader == nil {
		return "", fmt.Errorf("%s: downloader is not configured", op)
	}

	item, err := s.Get(id)
	if err != nil {
		return "", err
	}
	return s.downloader.Save(ctx, item, dir)
}

// report は永続化の失敗をログに残し、利用者に一度だけ通知します。
func (s *GalleryService) report(ctx context.Context, op string, res gallery.SaveResult) {
	if res.OK() {
		return
	}
	s.log.ErrorContext(ctx, "ギャラリーを保存できませんでした",
		slog.String("op", op), "quota_exceeded", res.QuotaExceeded(), "error", res.Err)
	msg := domain.MsgStorageSaveFailed
	if res.QuotaExceeded() {
		msg = domain.MsgStorageFull
	}
	s.notifier.Notify(ctx, msg)
}
