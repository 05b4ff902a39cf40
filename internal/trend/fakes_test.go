package trend

import (
	"context"
	"sync"
	"time"

	"github.com/iceymoss/news-hub/internal/store"
	"github.com/iceymoss/news-hub/pkg/xerr"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeStatsStore 内存版 StatsStore，行为对齐 Mongo 实现：
// Get 返回副本，Save 整条覆盖，UpsertLikes 带 setOnInsert 语义
type fakeStatsStore struct {
	mu      sync.Mutex
	records map[primitive.ObjectID]*store.ArticleStats
	saveErr error
}

func newFakeStatsStore() *fakeStatsStore {
	return &fakeStatsStore{records: make(map[primitive.ObjectID]*store.ArticleStats)}
}

func copyStats(s *store.ArticleStats) *store.ArticleStats {
	cp := *s
	cp.ViewHistory = append([]store.ViewEntry(nil), s.ViewHistory...)
	cp.UniqueVisitors = append([]string(nil), s.UniqueVisitors...)
	return &cp
}

func (f *fakeStatsStore) Get(ctx context.Context, articleID primitive.ObjectID) (*store.ArticleStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.records[articleID]
	if !ok {
		return nil, xerr.NotFound("article stats not found")
	}
	return copyStats(s), nil
}

func (f *fakeStatsStore) Save(ctx context.Context, stats *store.ArticleStats) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[stats.ArticleID] = copyStats(stats)
	return nil
}

func (f *fakeStatsStore) UpsertLikes(ctx context.Context, articleID primitive.ObjectID, likes int64, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.records[articleID]; ok {
		s.Likes = likes
		return nil
	}
	f.records[articleID] = &store.ArticleStats{
		ArticleID:      articleID,
		Likes:          likes,
		LastViewed:     now,
		ViewHistory:    []store.ViewEntry{},
		UniqueVisitors: []string{},
	}
	return nil
}

func (f *fakeStatsStore) UpdateScore(ctx context.Context, articleID primitive.ObjectID, score float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.records[articleID]; ok {
		s.TrendingScore = score
	}
	return nil
}

func (f *fakeStatsStore) List(ctx context.Context) ([]*store.ArticleStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := make([]*store.ArticleStats, 0, len(f.records))
	for _, s := range f.records {
		list = append(list, copyStats(s))
	}
	return list, nil
}

func (f *fakeStatsStore) Delete(ctx context.Context, articleID primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[articleID]; !ok {
		return false, nil
	}
	delete(f.records, articleID)
	return true, nil
}

type fakeArticleStore struct {
	mu       sync.Mutex
	articles map[primitive.ObjectID]*store.Article
}

func newFakeArticleStore() *fakeArticleStore {
	return &fakeArticleStore{articles: make(map[primitive.ObjectID]*store.Article)}
}

func (f *fakeArticleStore) add(likes int64) primitive.ObjectID {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := primitive.NewObjectID()
	f.articles[id] = &store.Article{ID: id, Likes: likes}
	return id
}

func (f *fakeArticleStore) remove(id primitive.ObjectID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.articles, id)
}

func (f *fakeArticleStore) setLikes(id primitive.ObjectID, likes int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.articles[id].Likes = likes
}

func (f *fakeArticleStore) ListLikeCounts(ctx context.Context) ([]*store.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := make([]*store.Article, 0, len(f.articles))
	for _, a := range f.articles {
		cp := *a
		list = append(list, &cp)
	}
	return list, nil
}

func (f *fakeArticleStore) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.articles[id]
	return ok, nil
}
