package handler

import (
	"net/http"
	"strconv"

	"github.com/iceymoss/news-hub/internal/store"
	"github.com/iceymoss/news-hub/internal/trend"
	"github.com/iceymoss/news-hub/internal/trendcache"
	"github.com/iceymoss/news-hub/pkg/xerr"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrendingArticle 热榜条目：文章加上浏览数和热度分
type TrendingArticle struct {
	store.Article
	Views         int64   `json:"views"`
	TrendingScore float64 `json:"trendingScore"`
}

// StatsHandler 统计相关接口：浏览记录、热榜、单篇统计、点赞同步
type StatsHandler struct {
	recorder *trend.Recorder
	syncer   *trend.Syncer
	stats    *store.StatsRepo
	articles *store.ArticleRepo
	cache    *trendcache.Cache
}

func NewStatsHandler(
	recorder *trend.Recorder,
	syncer *trend.Syncer,
	stats *store.StatsRepo,
	articles *store.ArticleRepo,
	cache *trendcache.Cache,
) *StatsHandler {
	return &StatsHandler{
		recorder: recorder,
		syncer:   syncer,
		stats:    stats,
		articles: articles,
		cache:    cache,
	}
}

// ViewArticle POST /api/articles/:id/view
// 访客标识取登录用户 id，匿名请求退化为客户端 IP
func (h *StatsHandler) ViewArticle(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, xerr.NotFound("article not found"))
		return
	}

	var body userIDBody
	_ = c.ShouldBindJSON(&body)

	visitorID := body.UserID
	if visitorID == "" {
		visitorID = c.ClientIP()
	}

	snapshot, err := h.recorder.RecordView(c.Request.Context(), id, visitorID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Article view recorded",
		"stats":   snapshot,
	})
}

// GetTrending GET /api/trending?limit=
// 优先走 Redis 缓存，未命中时按热度分取统计、反查文章并保持分数序
func (h *StatsHandler) GetTrending(c *gin.Context) {
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "10"), 10, 64)
	if err != nil || limit < 1 {
		limit = 10
	}

	var articles []TrendingArticle
	if h.cache.Get(c.Request.Context(), limit, &articles) {
		c.JSON(http.StatusOK, gin.H{"success": true, "articles": articles})
		return
	}

	topStats, err := h.stats.TopByScore(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	ids := make([]primitive.ObjectID, 0, len(topStats))
	for _, s := range topStats {
		ids = append(ids, s.ArticleID)
	}

	found, err := h.articles.ByIDs(c.Request.Context(), ids)
	if err != nil {
		respondError(c, err)
		return
	}
	byID := make(map[primitive.ObjectID]*store.Article, len(found))
	for _, a := range found {
		byID[a.ID] = a
	}

	// 按统计的分数序输出，跳过已被删除的文章
	articles = make([]TrendingArticle, 0, len(topStats))
	for _, s := range topStats {
		article, ok := byID[s.ArticleID]
		if !ok {
			continue
		}
		articles = append(articles, TrendingArticle{
			Article:       *article,
			Views:         s.Views,
			TrendingScore: s.TrendingScore,
		})
	}

	h.cache.Set(c.Request.Context(), limit, articles)

	c.JSON(http.StatusOK, gin.H{"success": true, "articles": articles})
}

// SyncLikes GET /api/sync-likes
// 手动触发全量点赞同步，返回处理的文章数
func (h *StatsHandler) SyncLikes(c *gin.Context) {
	count, err := h.syncer.SyncAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Article likes synchronized",
		"count":   count,
	})
}

// GetArticleStats GET /api/articles/:id/stats
// 没有统计记录时返回零值而不是 404
func (h *StatsHandler) GetArticleStats(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, xerr.NotFound("article not found"))
		return
	}

	stats, err := h.stats.Get(c.Request.Context(), id)
	if err != nil {
		if xerr.IsNotFound(err) {
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"stats": gin.H{
					"views":         0,
					"likes":         0,
					"trendingScore": 0,
					"lastViewed":    nil,
				},
			})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats": gin.H{
			"views":         stats.Views,
			"likes":         stats.Likes,
			"trendingScore": stats.TrendingScore,
			"lastViewed":    stats.LastViewed,
		},
	})
}
