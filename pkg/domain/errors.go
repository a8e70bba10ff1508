package domain

import (
	"errors"
	"fmt"
)

// 利用者に表示するメッセージ。
const (
	MsgPromptRequired    = "请输入提示词"
	MsgUploadTooLarge    = "图片大小不能超过 4MB"
	MsgUploadNotImage    = "仅支持 PNG, JPG, GIF 等图片格式"
	MsgGenerationFailed  = "生成图片失败，请重试。"
	MsgStorageFull       = "本地存储空间已满，旧的图片可能无法保存，请删除一些图片释放空间。"
	MsgStorageSaveFailed = "保存失败，最近的更改可能不会被保留。"
	MsgConfirmDelete     = "确定要删除这张图片吗？"
	MsgConfirmReset      = "确定要重置所有数据吗？这将删除所有生成和上传的图片并恢复默认设置。"
	UploadPrompt         = "本地上传图片"
)

var (
	// ErrGenerationInProgress は生成リクエストが既に実行中のときに返されます。
	ErrGenerationInProgress = errors.New("image generation already in progress")
	// ErrNoImageData はレスポンスに画像パーツが含まれていなかったことを示します。
	ErrNoImageData = errors.New("no image data found in response")
	// ErrItemNotFound は指定 ID の作品が存在しないことを示します。
	ErrItemNotFound = errors.New("gallery item not found")
)

// ValidationError は外部呼び出しや状態変更の前に検出された入力エラーです。
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// GenerationError は外部生成 API の失敗をひとつにまとめたエラーです。
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return "image generation failed"
	}
	return "image generation failed: " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error { return e.Err }

// StorageReadError は永続スロットの読み込みまたは解析の失敗です。ログにのみ記録されます。
type StorageReadError struct {
	Key string
	Err error
}

func (e *StorageReadError) Error() string {
	return fmt.Sprintf("read slot %q: %v", e.Key, e.Err)
}

func (e *StorageReadError) Unwrap() error { return e.Err }

// StorageWriteError は永続スロットへの書き込み失敗です。メモリ上の状態は変更されません。
type StorageWriteError struct {
	Key string
	Err error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("write slot %q: %v", e.Key, e.Err)
}

func (e *StorageWriteError) Unwrap() error { return e.Err }
