package gallery

import (
	"time"

	"github.com/shouni/visionary-gallery/pkg/domain"
)

type seedEntry struct {
	id       string
	url      string
	prompt   string
	category domain.Category
	age      time.Duration
}

// 初回起動時や保存データが壊れているときに表示する固定の作品群。
var seedEntries = []seedEntry{
	{"init-1", "https://images.unsplash.com/photo-1470071459604-3b5ec3a7fe05?auto=format&fit=crop&w=800&q=80", "清晨的雾中群山，高分辨率摄影", domain.CategoryLandscape, 1000 * time.Second},
	{"init-2", "https://images.unsplash.com/photo-1578632767115-351597cf2477?auto=format&fit=crop&w=800&q=80", "赛博朋克风格的动漫角色", domain.CategoryAnime, 900 * time.Second},
	{"init-3", "https://images.unsplash.com/photo-1534528741775-53994a69daeb?auto=format&fit=crop&w=800&q=80", "极具表现力的人像摄影", domain.CategoryCharacter, 800 * time.Second},
	{"init-4", "https://images.unsplash.com/photo-1629196914168-3a26476b7e88?auto=format&fit=crop&w=800&q=80", "极简主义的抽象几何海报设计", domain.CategoryPoster, 700 * time.Second},
	{"init-5", "https://images.unsplash.com/photo-1523275335684-37898b6baf30?auto=format&fit=crop&w=800&q=80", "干净背景下的产品摄影，智能手表", domain.CategoryProduct, 600 * time.Second},
	{"init-6", "https://images.unsplash.com/photo-1618005182384-a83a8bd57fbe?auto=format&fit=crop&w=800&q=80", "流体艺术，抽象背景", domain.CategoryAbstract, 500 * time.Second},
	{"init-7", "https://images.unsplash.com/photo-1546856313-71a25d209199?auto=format&fit=crop&w=800&q=80", "日落时分的城市天际线", domain.CategoryLandscape, 400 * time.Second},
	{"init-8", "https://images.unsplash.com/photo-1607374028082-9f373d726c59?auto=format&fit=crop&w=800&q=80", "机械少女，科幻概念艺术", domain.CategoryAnime, 300 * time.Second},
}

// SeedItems は now を基準に作成時刻を割り当てたシード作品を返します。
func SeedItems(now time.Time) []domain.GalleryItem {
	items := make([]domain.GalleryItem, 0, len(seedEntries))
	for _, e := range seedEntries {
		items = append(items, domain.GalleryItem{
			ID:        e.id,
			URL:       e.url,
			Prompt:    e.prompt,
			Category:  e.category,
			CreatedAt: now.Add(-e.age).UnixMilli(),
			Source:    domain.SourceUploaded,
		})
	}
	return items
}
