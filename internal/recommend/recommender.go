package recommend

import (
	"context"

	"github.com/iceymoss/news-hub/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

const fallbackLimit = 10

// ArticleStore 推荐需要的文章查询，由 store.ArticleRepo 实现
type ArticleStore interface {
	ByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*store.Article, error)
	BySourcesExcluding(ctx context.Context, sources []string, exclude []primitive.ObjectID) ([]*store.Article, error)
	Newest(ctx context.Context, limit int64) ([]*store.Article, error)
}

// UserStore 用户偏好读取，由 store.UserRepo 实现
type UserStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*store.User, error)
}

// Annotated 推荐结果里的一篇文章。三个标记各自独立计算：
// 一篇既被喜欢又来自关注来源的文章两个标记同时为 true，
// IsRelated 只是"前两者都不成立"，三者并不互斥。
type Annotated struct {
	store.Article
	IsLiked              bool `json:"isLiked"`
	IsFromFollowedSource bool `json:"isFromFollowedSource"`
	IsRelated            bool `json:"isRelated"`
}

// SignalCounts 各信号的数量，给前端展示用
type SignalCounts struct {
	Liked           int `json:"liked"`
	FollowedSources int `json:"followedSources"`
	Related         int `json:"related"`
}

type Result struct {
	Articles []Annotated
	Counts   SignalCounts
}

// Recommender 基于三路信号（喜欢、关注来源、同源相关）构建推荐列表
type Recommender struct {
	articles ArticleStore
	users    UserStore
}

func NewRecommender(articles ArticleStore, users UserStore) *Recommender {
	return &Recommender{articles: articles, users: users}
}

// Recommend 为用户生成去重后的推荐列表。
// 合并顺序：喜欢 ++ 关注来源，按 id 去重保留先出现的，
// 再拼接同源相关后再去重一次，因此优先级是
// 喜欢 > 关注来源 > 同源相关，每篇文章恰好出现一次。
// 三路信号都为空时退回全站最新 10 篇。
func (r *Recommender) Recommend(ctx context.Context, userID primitive.ObjectID) (*Result, error) {
	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var likedArticles, followedArticles []*store.Article

	// 喜欢和关注来源两路查询相互独立，并发取；
	// 同源相关要等喜欢的结果算出来源集合
	g, gctx := errgroup.WithContext(ctx)
	if len(user.LikedArticles) > 0 {
		g.Go(func() error {
			var err error
			likedArticles, err = r.articles.ByIDs(gctx, user.LikedArticles)
			return err
		})
	}
	if len(user.FollowedSources) > 0 {
		g.Go(func() error {
			var err error
			followedArticles, err = r.articles.BySourcesExcluding(gctx, user.FollowedSources, user.LikedArticles)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var relatedArticles []*store.Article
	if len(likedArticles) > 0 {
		var likedSources []string
		seen := make(map[string]bool)
		for _, article := range likedArticles {
			if article.SourceName != "" && !seen[article.SourceName] {
				seen[article.SourceName] = true
				likedSources = append(likedSources, article.SourceName)
			}
		}
		relatedArticles, err = r.articles.BySourcesExcluding(ctx, likedSources, user.LikedArticles)
		if err != nil {
			return nil, err
		}
	}

	combined := dedupByID(append(dedupByID(append(likedArticles, followedArticles...)), relatedArticles...))

	if len(combined) == 0 {
		combined, err = r.articles.Newest(ctx, fallbackLimit)
		if err != nil {
			return nil, err
		}
	}

	annotated := make([]Annotated, 0, len(combined))
	for _, article := range combined {
		isLiked := user.HasLiked(article.ID)
		isFromFollowed := user.FollowsSource(article.SourceName)
		annotated = append(annotated, Annotated{
			Article:              *article,
			IsLiked:              isLiked,
			IsFromFollowedSource: isFromFollowed,
			IsRelated:            !isLiked && !isFromFollowed,
		})
	}

	return &Result{
		Articles: annotated,
		Counts: SignalCounts{
			Liked:           len(user.LikedArticles),
			FollowedSources: len(user.FollowedSources),
			Related:         len(relatedArticles),
		},
	}, nil
}

// dedupByID 按 id 去重，保留第一次出现的条目
func dedupByID(articles []*store.Article) []*store.Article {
	seen := make(map[primitive.ObjectID]bool, len(articles))
	out := articles[:0:0]
	for _, article := range articles {
		if seen[article.ID] {
			continue
		}
		seen[article.ID] = true
		out = append(out, article)
	}
	return out
}
