package trend

import (
	"context"

	zLog "github.com/iceymoss/news-hub/pkg/logger"

	"go.uber.org/zap"
)

// Reaper 清理孤儿统计记录：文章已删而统计还在的条目
type Reaper struct {
	articles ArticleStore
	stats    StatsStore
}

func NewReaper(articles ArticleStore, stats StatsStore) *Reaper {
	return &Reaper{articles: articles, stats: stats}
}

// Reap 遍历全部统计记录，引用的文章不存在就删除。
// 删除是 delete-if-exists 语义，和并发清理互不冲突。
func (r *Reaper) Reap(ctx context.Context) (int, error) {
	list, err := r.stats.List(ctx)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, stats := range list {
		exists, err := r.articles.Exists(ctx, stats.ArticleID)
		if err != nil {
			return deleted, err
		}
		if exists {
			continue
		}

		removed, err := r.stats.Delete(ctx, stats.ArticleID)
		if err != nil {
			return deleted, err
		}
		if removed {
			deleted++
			zLog.Debug("reaped orphan stats", zap.String("articleId", stats.ArticleID.Hex()))
		}
	}
	return deleted, nil
}
