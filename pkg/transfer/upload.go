package transfer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/shouni/go-remote-io/pkg/remoteio"

	"github.com/shouni/visionary-gallery/pkg/domain"
	"github.com/shouni/visionary-gallery/pkg/imgutil"
)

// MaxUploadBytes はアップロードできる画像の上限サイズです。
const MaxUploadBytes int64 = 4 * 1024 * 1024

// Uploader はローカルまたはリモートの画像を検証し、data URI に変換します。
type Uploader struct {
	reader   remoteio.InputReader
	maxBytes int64
	compress bool
	quality  int
}

// UploaderOption は Uploader の生成オプションです。
type UploaderOption func(*Uploader)

// WithMaxBytes は上限サイズを変更します。
func WithMaxBytes(n int64) UploaderOption {
	return func(u *Uploader) {
		if n > 0 {
			u.maxBytes = n
		}
	}
}

// WithCompression は JPEG への再圧縮を有効にします。
func WithCompression(quality int) UploaderOption {
	return func(u *Uploader) {
		u.compress = true
		u.quality = quality
	}
}

// WithInputReader は読み込みに使う InputReader を差し替えます。
// gs:// や s3:// を読むにはクライアントを注入した reader を渡します。
func WithInputReader(r remoteio.InputReader) UploaderOption {
	return func(u *Uploader) {
		if r != nil {
			u.reader = r
		}
	}
}

// NewUploader は Uploader を初期化するのだ。既定ではローカルパスのみ読み込めます。
func NewUploader(opts ...UploaderOption) *Uploader {
	u := &Uploader{
		reader:   remoteio.NewUniversalInputReader(nil, nil),
		maxBytes: MaxUploadBytes,
		quality:  imgutil.DefaultJPEGQuality,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// MaxBytes は上限サイズを返します。
func (u *Uploader) MaxBytes() int64 { return u.maxBytes }

// Load はパスまたは URI から画像を読み込んで data URI を返します。
// ローカルファイルは内容を読む前にサイズを判定し、リモートは上限 +1 バイトまでしか読みません。
func (u *Uploader) Load(ctx context.Context, path string) (string, error) {
	size := int64(-1)
	if !remoteio.IsRemoteURI(path) {
		info, err := os.Stat(path)
		if err != nil {
			return "", fmt.Errorf("ファイル情報の取得に失敗しました: %w", err)
		}
		if info.IsDir() {
			return "", &domain.ValidationError{Field: "file", Message: domain.MsgUploadNotImage}
		}
		if info.Size() > u.maxBytes {
			return "", &domain.ValidationError{Field: "file", Message: domain.MsgUploadTooLarge}
		}
		size = info.Size()
	}

	rc, err := u.reader.Open(ctx, path)
	if err != nil {
		return "", fmt.Errorf("画像を開けませんでした: %w", err)
	}
	defer rc.Close()

	return u.LoadReader(rc, size)
}

// LoadReader は申告サイズ付きのストリームから data URI を作ります。
// size が不明な場合は負の値を渡します。
func (u *Uploader) LoadReader(r io.Reader, size int64) (string, error) {
	if size > u.maxBytes {
		return "", &domain.ValidationError{Field: "file", Message: domain.MsgUploadTooLarge}
	}

	data, err := io.ReadAll(io.LimitReader(r, u.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("画像の読み込みに失敗しました: %w", err)
	}
	if int64(len(data)) > u.maxBytes {
		return "", &domain.ValidationError{Field: "file", Message: domain.MsgUploadTooLarge}
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return "", &domain.ValidationError{Field: "file", Message: domain.MsgUploadNotImage}
	}

	if u.compress {
		before := len(data)
		data, mimeType = imgutil.ShrinkIfSmaller(data, mimeType, u.quality)
		slog.Debug("アップロード画像を再圧縮しました", "before", before, "after", len(data))
	}

	return imgutil.EncodeDataURI(mimeType, data), nil
}
