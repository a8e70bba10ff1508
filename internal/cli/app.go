package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/patrickmn/go-cache"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/gcsfactory"
	"github.com/shouni/go-remote-io/pkg/remoteio"
	"github.com/shouni/go-remote-io/pkg/s3factory"

	"github.com/shouni/visionary-gallery/internal/config"
	"github.com/shouni/visionary-gallery/pkg/gallery"
	"github.com/shouni/visionary-gallery/pkg/generator"
	"github.com/shouni/visionary-gallery/pkg/service"
	"github.com/shouni/visionary-gallery/pkg/storage"
	"github.com/shouni/visionary-gallery/pkg/transfer"
)

// app は 1 回のコマンド実行で使う依存関係一式です。
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	store   *gallery.Store
	service *service.GalleryService
	closers []func() error
}

func (a *app) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// newSlot は設定されたバックエンドのスロットを作ります。
func newSlot(ctx context.Context, cfg *config.Config) (storage.Slot, func() error, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return storage.NewMemorySlot(cfg.Storage.QuotaBytes), nil, nil
	case config.BackendRedis:
		client := storage.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		slot := storage.NewRedisSlot(client, cfg.Redis.Prefix, cfg.Storage.QuotaBytes)
		if err := slot.HealthCheck(ctx); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis %s に接続できません: %w", cfg.Redis.Addr, err)
		}
		return slot, client.Close, nil
	default:
		slot, err := storage.NewFileSlot(cfg.Storage.Dir, cfg.Storage.QuotaBytes)
		if err != nil {
			return nil, nil, err
		}
		return slot, nil, nil
	}
}

// newRemoteIO は remote.provider に応じて gs:// や s3:// を扱える reader と writer を作ります。
// プロバイダ未設定なら nil を返し、Uploader と Downloader はローカルのみを扱います。
func newRemoteIO(ctx context.Context, cfg *config.Config) (remoteio.InputReader, remoteio.OutputWriter, func() error, error) {
	var (
		factory remoteio.IOFactory
		err     error
	)
	switch cfg.Remote.Provider {
	case config.RemoteGCS:
		factory, err = gcsfactory.New(ctx)
	case config.RemoteS3:
		factory, err = s3factory.New(ctx)
	default:
		return nil, nil, nil, nil
	}
	if err != nil {
		return nil, nil, nil, err
	}

	reader, err := factory.InputReader()
	if err != nil {
		_ = factory.Close()
		return nil, nil, nil, err
	}
	writer, err := factory.OutputWriter()
	if err != nil {
		_ = factory.Close()
		return nil, nil, nil, err
	}
	return reader, writer, factory.Close, nil
}

// newGenerator は API キーがあれば Gemini の生成ゲートウェイを作ります。
func newGenerator(ctx context.Context, cfg *config.Config) (service.ImageGenerator, error) {
	if cfg.Gemini.APIKey == "" {
		return nil, nil
	}
	model, err := generator.NewGenaiModel(ctx, cfg.Gemini.APIKey)
	if err != nil {
		return nil, err
	}
	core, err := generator.NewGeminiImageCore(model, cfg.Gemini.Model)
	if err != nil {
		return nil, err
	}
	return generator.NewGeminiGenerator(core)
}

func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger, confirmer service.Confirmer, notifier service.Notifier) (*app, error) {
	slot, closeSlot, err := newSlot(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log}
	if closeSlot != nil {
		a.closers = append(a.closers, closeSlot)
	}

	a.store = gallery.NewStore(ctx, slot, cfg.Storage.Slot)

	gen, err := newGenerator(ctx, cfg)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("画像生成クライアントを初期化できませんでした: %w", err)
	}

	reader, writer, closeRemote, err := newRemoteIO(ctx, cfg)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("リモートストレージのクライアントを初期化できませんでした: %w", err)
	}
	if closeRemote != nil {
		a.closers = append(a.closers, closeRemote)
	}

	uploadOpts := []transfer.UploaderOption{
		transfer.WithMaxBytes(cfg.Upload.MaxBytes),
		transfer.WithInputReader(reader),
	}
	if cfg.Upload.Compress {
		uploadOpts = append(uploadOpts, transfer.WithCompression(cfg.Upload.Quality))
	}

	downloader, err := transfer.NewDownloader(
		httpkit.New(cfg.Download.Timeout),
		cache.New(cfg.Download.CacheTTL, 2*cfg.Download.CacheTTL),
		cfg.Download.CacheTTL,
		transfer.WithOutputWriter(writer),
	)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	deps := service.Deps{
		Log:        log,
		Store:      a.store,
		Generator:  gen,
		Uploader:   transfer.NewUploader(uploadOpts...),
		Downloader: downloader,
		Confirmer:  confirmer,
		Notifier:   notifier,
	}
	a.service, err = service.New(deps)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}
