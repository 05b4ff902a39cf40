package trend

import (
	"context"
	"time"

	"github.com/iceymoss/news-hub/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatsStore 统计记录的持久化操作，由 store.StatsRepo 实现
type StatsStore interface {
	Get(ctx context.Context, articleID primitive.ObjectID) (*store.ArticleStats, error)
	Save(ctx context.Context, stats *store.ArticleStats) error
	UpsertLikes(ctx context.Context, articleID primitive.ObjectID, likes int64, now time.Time) error
	UpdateScore(ctx context.Context, articleID primitive.ObjectID, score float64) error
	List(ctx context.Context) ([]*store.ArticleStats, error)
	Delete(ctx context.Context, articleID primitive.ObjectID) (bool, error)
}

// ArticleStore 同步和清理任务需要的文章侧操作，由 store.ArticleRepo 实现
type ArticleStore interface {
	ListLikeCounts(ctx context.Context) ([]*store.Article, error)
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
}
