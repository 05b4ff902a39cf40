package gnews

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iceymoss/news-hub/pkg/xerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const headlinesBody = `{
	"totalArticles": 2,
	"articles": [
		{
			"title": "First",
			"description": "first desc",
			"content": "first content",
			"url": "https://example.com/1",
			"image": "https://example.com/1.jpg",
			"publishedAt": "2025-08-30T10:00:00Z",
			"source": {"name": "Example", "url": "https://example.com"}
		},
		{
			"title": "Second",
			"url": "https://example.com/2",
			"publishedAt": "2025-08-30T09:00:00Z",
			"source": {"name": "Example", "url": "https://example.com"}
		}
	]
}`

func TestTopHeadlines(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/top-headlines", r.URL.Path)
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(headlinesBody))
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL)
	articles, err := c.TopHeadlines(context.Background(), "sports")
	require.NoError(t, err)

	require.Len(t, articles, 2)
	assert.Equal(t, "First", articles[0].Title)
	assert.Equal(t, "https://example.com/1", articles[0].URL)
	assert.Equal(t, "Example", articles[0].Source.Name)

	assert.Equal(t, []string{"test-key"}, gotQuery["token"])
	assert.Equal(t, []string{"sports"}, gotQuery["category"])
}

func TestTopHeadlinesGeneralOmitsCategory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// general 分类不传 category 参数，与上游默认行为一致
		assert.False(t, r.URL.Query().Has("category"))
		w.Write([]byte(`{"totalArticles":0,"articles":[]}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL)
	_, err := c.TopHeadlines(context.Background(), "general")
	require.NoError(t, err)
}

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "golang", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("max"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		w.Write([]byte(headlinesBody))
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL)
	result, err := c.Search(context.Background(), "golang", 5, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalArticles)
	assert.Len(t, result.Articles, 2)
}

func TestUpstreamErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL)
	_, err := c.TopHeadlines(context.Background(), "general")
	require.Error(t, err)
	assert.True(t, xerr.IsUpstream(err))
}

func TestUpstreamUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // 直接关掉，模拟上游不可达

	c := NewClient("test-key", srv.URL)
	_, err := c.TopHeadlines(context.Background(), "general")
	require.Error(t, err)
	assert.True(t, xerr.IsUpstream(err))
}

func TestUpstreamBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL)
	_, err := c.TopHeadlines(context.Background(), "general")
	require.Error(t, err)
	assert.True(t, xerr.IsUpstream(err))
}
