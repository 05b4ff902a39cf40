package recommend

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/iceymoss/news-hub/internal/store"
	"github.com/iceymoss/news-hub/pkg/xerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeArticles 内存文章库，查询行为对齐 Mongo 实现（发布时间倒序）
type fakeArticles struct {
	articles []*store.Article
}

func (f *fakeArticles) add(title, source string, publishedAt time.Time) *store.Article {
	a := &store.Article{
		ID:          primitive.NewObjectID(),
		Title:       title,
		SourceName:  source,
		PublishedAt: publishedAt,
	}
	f.articles = append(f.articles, a)
	return a
}

func byNewest(list []*store.Article) []*store.Article {
	sorted := append([]*store.Article(nil), list...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].PublishedAt.After(sorted[j].PublishedAt)
	})
	return sorted
}

func (f *fakeArticles) ByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*store.Article, error) {
	want := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []*store.Article
	for _, a := range f.articles {
		if want[a.ID] {
			out = append(out, a)
		}
	}
	return byNewest(out), nil
}

func (f *fakeArticles) BySourcesExcluding(ctx context.Context, sources []string, exclude []primitive.ObjectID) ([]*store.Article, error) {
	wantSource := make(map[string]bool, len(sources))
	for _, s := range sources {
		wantSource[s] = true
	}
	skip := make(map[primitive.ObjectID]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}
	var out []*store.Article
	for _, a := range f.articles {
		if wantSource[a.SourceName] && !skip[a.ID] {
			out = append(out, a)
		}
	}
	return byNewest(out), nil
}

func (f *fakeArticles) Newest(ctx context.Context, limit int64) ([]*store.Article, error) {
	sorted := byNewest(f.articles)
	if int64(len(sorted)) > limit {
		sorted = sorted[:limit]
	}
	return sorted, nil
}

type fakeUsers struct {
	users map[primitive.ObjectID]*store.User
}

func (f *fakeUsers) GetByID(ctx context.Context, id primitive.ObjectID) (*store.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, xerr.NotFound("user not found")
	}
	return u, nil
}

func newFixture() (*fakeArticles, *fakeUsers, *Recommender) {
	articles := &fakeArticles{}
	users := &fakeUsers{users: make(map[primitive.ObjectID]*store.User)}
	return articles, users, NewRecommender(articles, users)
}

func (f *fakeUsers) add(liked []primitive.ObjectID, followed []string) primitive.ObjectID {
	id := primitive.NewObjectID()
	f.users[id] = &store.User{
		ID:              id,
		LikedArticles:   liked,
		FollowedSources: followed,
	}
	return id
}

func titles(list []Annotated) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.Title)
	}
	return out
}

func TestRecommendUnknownUser(t *testing.T) {
	_, _, r := newFixture()

	_, err := r.Recommend(context.Background(), primitive.NewObjectID())
	require.Error(t, err)
	assert.True(t, xerr.IsNotFound(err))
}

func TestRecommendSignalPrecedence(t *testing.T) {
	articles, users, r := newFixture()
	now := time.Now()

	// A：用户喜欢，来源 X；B：来源 X 的相关文章；
	// C：关注来源 Y；D：无关来源 Z，不该出现
	a := articles.add("A", "X", now.Add(-1*time.Hour))
	articles.add("B", "X", now.Add(-2*time.Hour))
	articles.add("C", "Y", now.Add(-3*time.Hour))
	articles.add("D", "Z", now.Add(-4*time.Hour))

	userID := users.add([]primitive.ObjectID{a.ID}, []string{"Y"})

	result, err := r.Recommend(context.Background(), userID)
	require.NoError(t, err)

	// 优先级：喜欢 > 关注来源 > 同源相关
	assert.Equal(t, []string{"A", "C", "B"}, titles(result.Articles))

	assert.True(t, result.Articles[0].IsLiked)
	assert.False(t, result.Articles[0].IsRelated)
	assert.True(t, result.Articles[1].IsFromFollowedSource)
	assert.False(t, result.Articles[1].IsRelated)
	assert.True(t, result.Articles[2].IsRelated)
	assert.False(t, result.Articles[2].IsLiked)
	assert.False(t, result.Articles[2].IsFromFollowedSource)

	assert.Equal(t, 1, result.Counts.Liked)
	assert.Equal(t, 1, result.Counts.FollowedSources)
	assert.Equal(t, 1, result.Counts.Related)
}

func TestRecommendAnnotationsIndependent(t *testing.T) {
	articles, users, r := newFixture()
	now := time.Now()

	// 一篇既被喜欢又来自关注来源的文章：两个标记都为 true，
	// 标记是事后独立计算的，不记来路
	a := articles.add("A", "X", now)

	userID := users.add([]primitive.ObjectID{a.ID}, []string{"X"})

	result, err := r.Recommend(context.Background(), userID)
	require.NoError(t, err)

	require.Len(t, result.Articles, 1)
	got := result.Articles[0]
	assert.True(t, got.IsLiked)
	assert.True(t, got.IsFromFollowedSource)
	assert.False(t, got.IsRelated)
}

func TestRecommendDeduplicates(t *testing.T) {
	articles, users, r := newFixture()
	now := time.Now()

	// B 同时命中关注来源和同源相关两路信号，只出现一次
	a := articles.add("A", "X", now.Add(-1*time.Hour))
	articles.add("B", "X", now.Add(-2*time.Hour))

	userID := users.add([]primitive.ObjectID{a.ID}, []string{"X"})

	result, err := r.Recommend(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, titles(result.Articles))
}

func TestRecommendFallbackToNewest(t *testing.T) {
	articles, users, r := newFixture()
	now := time.Now()

	for i := 0; i < 15; i++ {
		articles.add("article", "S", now.Add(-time.Duration(i)*time.Hour))
	}

	// 没有任何偏好信号时退回全站最新 10 篇
	userID := users.add(nil, nil)

	result, err := r.Recommend(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, result.Articles, 10)

	for i := 1; i < len(result.Articles); i++ {
		assert.True(t, result.Articles[i-1].PublishedAt.After(result.Articles[i].PublishedAt))
	}

	// 退回列表里的文章不属于任何信号
	for _, a := range result.Articles {
		assert.False(t, a.IsLiked)
		assert.False(t, a.IsFromFollowedSource)
		assert.True(t, a.IsRelated)
	}
}

func TestRecommendLikedOrderedByPublishTime(t *testing.T) {
	articles, users, r := newFixture()
	now := time.Now()

	older := articles.add("older", "X", now.Add(-5*time.Hour))
	newer := articles.add("newer", "Y", now.Add(-1*time.Hour))

	userID := users.add([]primitive.ObjectID{older.ID, newer.ID}, nil)

	result, err := r.Recommend(context.Background(), userID)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(result.Articles), 2)
	assert.Equal(t, "newer", result.Articles[0].Title)
	assert.Equal(t, "older", result.Articles[1].Title)
}

func TestRecommendCountsDanglingLikes(t *testing.T) {
	articles, users, r := newFixture()

	// 喜欢集合里有已删除的文章 id：计数按集合大小报告，
	// 列表为空时走退回逻辑
	articles.add("only", "S", time.Now())
	userID := users.add([]primitive.ObjectID{primitive.NewObjectID()}, nil)

	result, err := r.Recommend(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Counts.Liked)
	assert.Len(t, result.Articles, 1)
}
