package trend

import (
	"context"
	"time"

	"github.com/iceymoss/news-hub/pkg/xerr"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Syncer 把文章侧的权威点赞数收敛进统计记录。
// 两个计数是最终一致的：like/unlike 会尽力同步，
// 漏掉的由定时任务兜底，滞后窗口最长一个同步周期。
type Syncer struct {
	articles ArticleStore
	stats    StatsStore
	now      func() time.Time
}

func NewSyncer(articles ArticleStore, stats StatsStore) *Syncer {
	return &Syncer{articles: articles, stats: stats, now: time.Now}
}

// SyncAll 全量同步，分两阶段：
// 先逐篇 upsert 点赞数（新记录拿默认值，旧记录的 views/lastViewed 不动），
// 再对所有统计记录重算热度分。先写后算保证每个分数都基于
// 刚同步的点赞数，与遍历顺序无关。两次连续执行结果相同。
func (s *Syncer) SyncAll(ctx context.Context) (int, error) {
	articles, err := s.articles.ListLikeCounts(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	for _, article := range articles {
		if err := s.stats.UpsertLikes(ctx, article.ID, article.Likes, now); err != nil {
			return 0, err
		}
	}

	if _, err := s.RefreshScores(ctx); err != nil {
		return 0, err
	}

	return len(articles), nil
}

// RefreshScores 用当前计数重算所有统计记录的热度分
func (s *Syncer) RefreshScores(ctx context.Context) (int, error) {
	list, err := s.stats.List(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	updated := 0
	for _, stats := range list {
		score := Score(stats.Views, stats.Likes, stats.LastViewed, now)
		if err := s.stats.UpdateScore(ctx, stats.ArticleID, score); err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

// SyncArticle 单篇同步，点赞接口在计数变化后调用。
// 记录不存在时创建。
func (s *Syncer) SyncArticle(ctx context.Context, articleID primitive.ObjectID, likes int64) error {
	now := s.now()
	if err := s.stats.UpsertLikes(ctx, articleID, likes, now); err != nil {
		return err
	}

	stats, err := s.stats.Get(ctx, articleID)
	if err != nil {
		return err
	}
	return s.stats.UpdateScore(ctx, articleID, Score(stats.Views, stats.Likes, stats.LastViewed, now))
}

// SyncArticleIfPresent 同 SyncArticle，但记录不存在时什么都不做。
// 取消点赞走这条路径：没有统计记录就没有可收敛的镜像。
func (s *Syncer) SyncArticleIfPresent(ctx context.Context, articleID primitive.ObjectID, likes int64) error {
	stats, err := s.stats.Get(ctx, articleID)
	if err != nil {
		if xerr.IsNotFound(err) {
			return nil
		}
		return err
	}

	stats.Likes = likes
	stats.TrendingScore = Score(stats.Views, stats.Likes, stats.LastViewed, s.now())
	return s.stats.Save(ctx, stats)
}
