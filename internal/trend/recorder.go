package trend

import (
	"context"
	"time"

	"github.com/iceymoss/news-hub/internal/store"
	"github.com/iceymoss/news-hub/pkg/xerr"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ViewSnapshot 浏览记录后的统计摘要
type ViewSnapshot struct {
	Views         int64   `json:"views"`
	Likes         int64   `json:"likes"`
	TrendingScore float64 `json:"trendingScore"`
}

// Recorder 记录文章浏览事件并维护去重访客集合
type Recorder struct {
	stats StatsStore
	now   func() time.Time
}

func NewRecorder(stats StatsStore) *Recorder {
	return &Recorder{stats: stats, now: time.Now}
}

// RecordView 记录一次浏览。visitorID 为空表示匿名请求，无法去重，
// 每次都计数；非空时同一访客对同一文章只计一次，访客集合不会重置。
// 无论计数是否变化，lastViewed 都刷新、热度分都重算。
func (r *Recorder) RecordView(ctx context.Context, articleID primitive.ObjectID, visitorID string) (*ViewSnapshot, error) {
	now := r.now()

	stats, err := r.stats.Get(ctx, articleID)
	if err != nil {
		if !xerr.IsNotFound(err) {
			return nil, err
		}
		// 首次浏览，懒创建
		stats = &store.ArticleStats{
			ArticleID:      articleID,
			ViewHistory:    []store.ViewEntry{},
			UniqueVisitors: []string{},
		}
	}

	switch {
	case visitorID == "":
		stats.Views++
	case !stats.HasVisitor(visitorID):
		stats.UniqueVisitors = append(stats.UniqueVisitors, visitorID)
		stats.Views++
		stats.ViewHistory = append(stats.ViewHistory, store.ViewEntry{Count: 1, Date: now})
	}

	stats.LastViewed = now
	stats.TrendingScore = Score(stats.Views, stats.Likes, stats.LastViewed, now)

	if err := r.stats.Save(ctx, stats); err != nil {
		return nil, err
	}

	return &ViewSnapshot{
		Views:         stats.Views,
		Likes:         stats.Likes,
		TrendingScore: stats.TrendingScore,
	}, nil
}
