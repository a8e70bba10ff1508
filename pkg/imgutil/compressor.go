package imgutil

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
)

// DefaultJPEGQuality はアップロード画像を再圧縮するときの既定品質です。
const DefaultJPEGQuality = 85

// CompressToJPEG は PNG や GIF などの画像を JPEG に再エンコードします。
// quality が 1..100 の範囲外なら DefaultJPEGQuality を使います。
func CompressToJPEG(data []byte, quality int) ([]byte, error) {
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("画像のデコードに失敗しました: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("JPEG へのエンコードに失敗しました: %w", err)
	}
	return buf.Bytes(), nil
}

// ShrinkIfSmaller は JPEG に圧縮した結果が元より小さい場合だけそれを返します。
// 戻り値の MIME タイプは採用したデータのものです。
func ShrinkIfSmaller(data []byte, mimeType string, quality int) ([]byte, string) {
	compressed, err := CompressToJPEG(data, quality)
	if err != nil || len(compressed) >= len(data) {
		return data, mimeType
	}
	return compressed, "image/jpeg"
}
