package storage

import (
	"context"
	"errors"
)

// DefaultQuota はブラウザのローカルストレージに相当する書き込み上限 (5 MiB) です。
const DefaultQuota int64 = 5 * 1024 * 1024

var (
	// ErrNotFound はキーに値が保存されていないことを示します。
	ErrNotFound = errors.New("slot not found")
	// ErrQuotaExceeded は書き込みサイズが上限を超えたことを示します。
	ErrQuotaExceeded = errors.New("slot quota exceeded")
)

// Slot は名前付きのキー・バリュー領域を抽象化するインターフェースです。
type Slot interface {
	// Read はキーの値を返します。存在しない場合は ErrNotFound を返します。
	Read(ctx context.Context, key string) ([]byte, error)
	// Write はキーの値を丸ごと置き換えます。
	Write(ctx context.Context, key string, data []byte) error
	// Remove はキーを削除します。存在しない場合もエラーにはなりません。
	Remove(ctx context.Context, key string) error
}

func checkQuota(quota int64, data []byte) error {
	if quota > 0 && int64(len(data)) > quota {
		return ErrQuotaExceeded
	}
	return nil
}
