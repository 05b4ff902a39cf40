package gnews

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/iceymoss/news-hub/pkg/xerr"
)

const DefaultBaseURL = "https://gnews.io/api/v4"

// Article 上游返回的文章记录
type Article struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	URL         string    `json:"url"`
	Image       string    `json:"image"`
	PublishedAt time.Time `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"source"`
}

type response struct {
	TotalArticles int       `json:"totalArticles"`
	Articles      []Article `json:"articles"`
}

// SearchResult 上游搜索结果及总数
type SearchResult struct {
	TotalArticles int
	Articles      []Article
}

// Client GNews v4 API 客户端
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// TopHeadlines 按分类拉取头条。category 为 general 时不传分类参数，
// 与上游默认行为一致。
func (c *Client) TopHeadlines(ctx context.Context, category string) ([]Article, error) {
	params := url.Values{}
	params.Set("token", c.apiKey)
	params.Set("lang", "en")
	if category != "" && category != "general" {
		params.Set("category", category)
	}

	res, err := c.get(ctx, "/top-headlines", params)
	if err != nil {
		return nil, err
	}
	return res.Articles, nil
}

// Search 上游全文搜索，带分页
func (c *Client) Search(ctx context.Context, q string, max, page int) (*SearchResult, error) {
	params := url.Values{}
	params.Set("token", c.apiKey)
	params.Set("lang", "en")
	params.Set("q", q)
	if max > 0 {
		params.Set("max", strconv.Itoa(max))
	}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}

	res, err := c.get(ctx, "/search", params)
	if err != nil {
		return nil, err
	}

	total := res.TotalArticles
	if total == 0 {
		total = len(res.Articles)
	}
	return &SearchResult{TotalArticles: total, Articles: res.Articles}, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, xerr.Upstream("build news request", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, xerr.Upstream("news api unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, xerr.Upstream(fmt.Sprintf("news api status %d", resp.StatusCode), nil)
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, xerr.Upstream("decode news response", err)
	}
	return &body, nil
}
