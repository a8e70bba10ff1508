package transfer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"

	"github.com/shouni/visionary-gallery/pkg/domain"
	"github.com/shouni/visionary-gallery/pkg/imgutil"
)

const cacheKeyRemoteImage = "remote_image:"

// ImageCacher は取得済み画像のキャッシュです。go-cache の *cache.Cache がそのまま満たします。
type ImageCacher interface {
	Get(key string) (any, bool)
	Set(key string, value any, d time.Duration)
}

// Downloader は作品の画像をローカルファイルまたはクラウドストレージに保存します。
type Downloader struct {
	httpClient httpkit.ClientInterface
	writer     remoteio.OutputWriter
	cache      ImageCacher
	expiration time.Duration
	resolve    IPResolver
	now        func() time.Time
}

// DownloaderOption は Downloader の生成オプションです。
type DownloaderOption func(*Downloader)

// WithResolver は SSRF 判定に使う名前解決を差し替えます。
func WithResolver(r IPResolver) DownloaderOption {
	return func(d *Downloader) { d.resolve = r }
}

// WithDownloadClock は現在時刻の取得関数を差し替えます。
func WithDownloadClock(now func() time.Time) DownloaderOption {
	return func(d *Downloader) { d.now = now }
}

// WithOutputWriter は書き出しに使う OutputWriter を差し替えます。
func WithOutputWriter(w remoteio.OutputWriter) DownloaderOption {
	return func(d *Downloader) {
		if w != nil {
			d.writer = w
		}
	}
}

// NewDownloader は Downloader を初期化します。cache は nil でも構いません。
func NewDownloader(httpClient httpkit.ClientInterface, cache ImageCacher, cacheTTL time.Duration, opts ...DownloaderOption) (*Downloader, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	d := &Downloader{
		httpClient: httpClient,
		writer:     remoteio.NewUniversalIOWriter(nil, nil),
		cache:      cache,
		expiration: cacheTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// FileName は保存時のファイル名 visionary-<category>-<epochミリ秒><拡張子> を返します。
func FileName(category domain.Category, at time.Time, mimeType string) string {
	return fmt.Sprintf("visionary-%s-%d%s", category, at.UnixMilli(), imgutil.ExtensionFor(mimeType))
}

// Save は作品の画像を dir に書き出し、保存先のパスを返します。
// dir が gs:// や s3:// の場合はそのバケット配下に書き出します。
func (d *Downloader) Save(ctx context.Context, item domain.GalleryItem, dir string) (string, error) {
	mimeType, data, err := d.resolveImage(ctx, item.URL)
	if err != nil {
		return "", err
	}

	target := joinTarget(dir, FileName(item.Category, d.now(), mimeType))
	if err := d.writer.Write(ctx, target, bytes.NewReader(data), mimeType); err != nil {
		return "", fmt.Errorf("画像の書き込みに失敗しました: %w", err)
	}

	slog.InfoContext(ctx, "画像を保存しました", "id", item.ID, "path", target, "bytes", len(data))
	return target, nil
}

func joinTarget(dir, name string) string {
	if remoteio.IsRemoteURI(dir) {
		return strings.TrimSuffix(dir, "/") + "/" + name
	}
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, name)
}

func (d *Downloader) resolveImage(ctx context.Context, rawURL string) (string, []byte, error) {
	if imgutil.IsDataURI(rawURL) {
		return imgutil.DecodeDataURI(rawURL)
	}

	data, err := d.fetchImageData(ctx, rawURL)
	if err != nil {
		return "", nil, err
	}
	return http.DetectContentType(data), data, nil
}

func (d *Downloader) fetchImageData(ctx context.Context, rawURL string) ([]byte, error) {
	if d.cache != nil {
		if val, ok := d.cache.Get(cacheKeyRemoteImage + rawURL); ok {
			if data, ok := val.([]byte); ok {
				return data, nil
			}
		}
	}

	if safe, err := IsSafeURL(rawURL, d.resolve); err != nil || !safe {
		return nil, fmt.Errorf("安全ではないURLが指定されました: %w", err)
	}

	data, err := d.httpClient.FetchBytes(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("画像の取得に失敗しました: %w", err)
	}

	if d.cache != nil {
		d.cache.Set(cacheKeyRemoteImage+rawURL, data, d.expiration)
	}
	return data, nil
}
