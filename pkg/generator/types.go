package generator

const (
	// DefaultModel は画像生成に使用する既定のモデルです。
	DefaultModel = "gemini-2.5-flash-image"
	// ResultMimeType は生成結果の data URI に付与する MIME タイプです。
	ResultMimeType = "image/png"
)

// ImageOutput は Core の内部解析結果
type ImageOutput struct {
	Data     []byte
	MimeType string
}
