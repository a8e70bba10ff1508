package domain

import (
	"strings"
	"time"
)

// Category は作品の分類タグです。All はフィルタ用の番兵値で、アップロード画像にも付与されます。
type Category string

const (
	CategoryAll       Category = "All"
	CategoryLandscape Category = "Landscape"
	CategoryCharacter Category = "Character"
	CategoryAnime     Category = "Anime"
	CategoryProduct   Category = "Product"
	CategoryPoster    Category = "Poster"
	CategoryAbstract  Category = "Abstract"
)

// Categories は表示順に並べた全カテゴリです。
var Categories = []Category{
	CategoryAll,
	CategoryLandscape,
	CategoryCharacter,
	CategoryAnime,
	CategoryProduct,
	CategoryPoster,
	CategoryAbstract,
}

var categoryLabels = map[Category]string{
	CategoryAll:       "全部作品",
	CategoryLandscape: "自然风景",
	CategoryCharacter: "人物角色",
	CategoryAnime:     "二次元/动漫",
	CategoryProduct:   "产品设计",
	CategoryPoster:    "商业海报",
	CategoryAbstract:  "抽象艺术",
}

// Valid は既知のカテゴリかどうかを返します。
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label は画面表示用のラベルを返します。未知の値はそのまま返します。
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// ParseCategory は大文字小文字を区別せずにカテゴリ名を解釈します。
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// Source は作品の出自です。
type Source string

const (
	SourceGenerated Source = "generated"
	SourceUploaded  Source = "uploaded"
)

// Valid は既知の出自かどうかを返します。
func (s Source) Valid() bool {
	return s == SourceGenerated || s == SourceUploaded
}

// GalleryItem は永続化される 1 枚の作品です。生成後は変更されません。
type GalleryItem struct {
	ID        string   `json:"id"`
	URL       string   `json:"url"`
	Prompt    string   `json:"prompt"`
	Category  Category `json:"category"`
	CreatedAt int64    `json:"createdAt"` // epoch ミリ秒
	Source    Source   `json:"source"`
}

// Created は CreatedAt を time.Time として返します。
func (g GalleryItem) Created() time.Time {
	return time.UnixMilli(g.CreatedAt)
}
