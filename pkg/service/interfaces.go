package service

import (
	"context"
	"io"

	"github.com/shouni/visionary-gallery/pkg/domain"
)

// ImageGenerator はプロンプトから画像 data URI を生成します。
type ImageGenerator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (string, error)
}

// ImageUploader はローカルまたはリモートの画像を data URI に変換します。
type ImageUploader interface {
	Load(ctx context.Context, path string) (string, error)
	LoadReader(r io.Reader, size int64) (string, error)
}

// ImageDownloader は作品の画像をファイルに保存します。
type ImageDownloader interface {
	Save(ctx context.Context, item domain.GalleryItem, dir string) (string, error)
}

// Confirmer は破壊的な操作の前に利用者へ確認を求めます。
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// Notifier は利用者への警告を表示します。
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// ConfirmFunc は関数を Confirmer として扱うためのアダプタです。
type ConfirmFunc func(ctx context.Context, message string) (bool, error)

// Confirm は f(ctx, message) を呼び出します。
func (f ConfirmFunc) Confirm(ctx context.Context, message string) (bool, error) {
	return f(ctx, message)
}

// AlwaysConfirm は常に承認する Confirmer です。
var AlwaysConfirm = ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })

// NotifyFunc は関数を Notifier として扱うためのアダプタです。
type NotifyFunc func(ctx context.Context, message string)

// Notify は f(ctx, message) を呼び出します。
func (f NotifyFunc) Notify(ctx context.Context, message string) { f(ctx, message) }

type confirmedKey struct{}

// WithConfirmed はリクエスト単位の確認結果を ctx に載せます。
func WithConfirmed(ctx context.Context, confirmed bool) context.Context {
	return context.WithValue(ctx, confirmedKey{}, confirmed)
}

// ContextConfirmer は WithConfirmed で載せた値を確認結果として返します。値がなければ拒否です。
var ContextConfirmer = ConfirmFunc(func(ctx context.Context, _ string) (bool, error) {
	confirmed, _ := ctx.Value(confirmedKey{}).(bool)
	return confirmed, nil
})
