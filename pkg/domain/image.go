package domain

import "github.com/samber/lo"

// AspectRatio は生成画像の縦横比です。
// 型としては 5 種類を許容しますが、利用者に提示するのは OfferedAspectRatios の 3 種類のみです。
type AspectRatio string

const (
	AspectSquare    AspectRatio = "1:1"
	AspectPortrait  AspectRatio = "3:4"
	AspectLandscape AspectRatio = "4:3"
	AspectWide      AspectRatio = "16:9"
	AspectTall      AspectRatio = "9:16"
)

// AllAspectRatios は型が許容するすべての縦横比です。
var AllAspectRatios = []AspectRatio{AspectSquare, AspectPortrait, AspectLandscape, AspectWide, AspectTall}

// OfferedAspectRatios は CLI / HTTP で選択可能な縦横比です。
var OfferedAspectRatios = []AspectRatio{AspectSquare, AspectWide, AspectTall}

// Valid は型として許容される縦横比かどうかを返します。
func (a AspectRatio) Valid() bool {
	return lo.Contains(AllAspectRatios, a)
}

// Offered は利用者に提示される縦横比かどうかを返します。
func (a AspectRatio) Offered() bool {
	return lo.Contains(OfferedAspectRatios, a)
}

// GenerationRequest は単一の画像生成要求です。
type GenerationRequest struct {
	Prompt      string      `json:"prompt" validate:"required,notblank"`
	Category    Category    `json:"category" validate:"required,category"`
	AspectRatio AspectRatio `json:"aspectRatio" validate:"required,aspectratio"`
}

// ImageResponse は生成された画像データとそのメタデータです。
type ImageResponse struct {
	Data     []byte
	MimeType string
}
