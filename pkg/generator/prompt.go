package generator

import (
	"strings"

	"github.com/shouni/visionary-gallery/pkg/domain"
)

// QualitySuffix は全カテゴリ共通で末尾に付与する品質向上キーワードです。
const QualitySuffix = ", masterpiece, best quality, sharp focus"

// 入力が中国語でもモデルが画風を理解できるよう、英語のスタイルキーワードを付与する。
var categorySuffixes = map[domain.Category]string{
	domain.CategoryLandscape: ", highly detailed landscape, cinematic lighting, 8k resolution, photorealistic, wide angle",
	domain.CategoryAnime:     ", anime style, vibrant colors, studio ghibli inspired, high quality, 2D render",
	domain.CategoryProduct:   ", product photography, studio lighting, clean background, commercial quality, 4k",
	domain.CategoryPoster:    ", poster design, bold typography, graphic design, vector art style, flat design",
	domain.CategoryCharacter: ", character design, detailed face, expressive, concept art, portrait lighting",
	domain.CategoryAbstract:  ", abstract art, geometric shapes, fluid forms, vibrant colors, digital art, wallpaper",
}

// CategorySuffix はカテゴリ固有のスタイル文字列を返します。All や未知のカテゴリは空文字です。
func CategorySuffix(c domain.Category) string {
	return categorySuffixes[c]
}

// BuildPrompt は利用者のプロンプトを残したまま、カテゴリと品質のキーワードを連結します。
func BuildPrompt(prompt string, c domain.Category) string {
	var b strings.Builder
	b.WriteString(prompt)
	b.WriteString(CategorySuffix(c))
	b.WriteString(QualitySuffix)
	return b.String()
}
