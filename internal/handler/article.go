package handler

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/iceymoss/news-hub/internal/gnews"
	"github.com/iceymoss/news-hub/internal/recommend"
	"github.com/iceymoss/news-hub/internal/store"
	zLog "github.com/iceymoss/news-hub/pkg/logger"
	"github.com/iceymoss/news-hub/pkg/xerr"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ArticleStore 文章侧的读写操作，由 store.ArticleRepo 实现
type ArticleStore interface {
	SaveIfNew(ctx context.Context, article *store.Article) (*store.Article, bool, error)
	List(ctx context.Context, filter store.ListFilter) ([]*store.Article, error)
	IncrementLikes(ctx context.Context, id primitive.ObjectID) (*store.Article, error)
	DecrementLikes(ctx context.Context, id primitive.ObjectID) (*store.Article, bool, error)
	CountByCategory(ctx context.Context, category string) (int64, error)
	TextSearch(ctx context.Context, q, category string, page, limit int64) ([]*store.Article, int64, error)
}

// UserStore 用户偏好的读写操作，由 store.UserRepo 实现
type UserStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*store.User, error)
	AddLikedArticle(ctx context.Context, userID, articleID primitive.ObjectID) error
	RemoveLikedArticle(ctx context.Context, userID, articleID primitive.ObjectID) error
	FollowSource(ctx context.Context, userID primitive.ObjectID, source string) ([]string, error)
	UnfollowSource(ctx context.Context, userID primitive.ObjectID, source string) ([]string, error)
}

// StatsSyncer 点赞变化后的统计收敛，由 trend.Syncer 实现
type StatsSyncer interface {
	SyncArticle(ctx context.Context, articleID primitive.ObjectID, likes int64) error
	SyncArticleIfPresent(ctx context.Context, articleID primitive.ObjectID, likes int64) error
}

// ArticleHandler 文章相关接口：抓取入库、列表、点赞、关注来源、推荐、搜索
type ArticleHandler struct {
	articles    ArticleStore
	users       UserStore
	news        *gnews.Client
	syncer      StatsSyncer
	recommender *recommend.Recommender
}

func NewArticleHandler(
	articles ArticleStore,
	users UserStore,
	news *gnews.Client,
	syncer StatsSyncer,
	recommender *recommend.Recommender,
) *ArticleHandler {
	return &ArticleHandler{
		articles:    articles,
		users:       users,
		news:        news,
		syncer:      syncer,
		recommender: recommender,
	}
}

type userIDBody struct {
	UserID string `json:"userId"`
}

// FetchAndSaveNews GET /api/fetch-news?category=
// 拉取上游头条并按 URL 去重入库，返回该分类的全部文章
func (h *ArticleHandler) FetchAndSaveNews(c *gin.Context) {
	category := c.DefaultQuery("category", store.CategoryGeneral)
	if !store.ValidCategory(category) {
		category = store.CategoryGeneral
	}

	fetched, err := h.news.TopHeadlines(c.Request.Context(), category)
	if err != nil {
		respondError(c, err)
		return
	}

	saved := 0
	for _, item := range fetched {
		article := &store.Article{
			Title:       item.Title,
			Description: item.Description,
			Content:     item.Content,
			URL:         item.URL,
			Image:       item.Image,
			PublishedAt: item.PublishedAt,
			SourceName:  item.Source.Name,
			SourceURL:   item.Source.URL,
			Category:    category,
		}
		_, inserted, err := h.articles.SaveIfNew(c.Request.Context(), article)
		if err != nil {
			respondError(c, err)
			return
		}
		if inserted {
			saved++
		}
	}

	all, err := h.articles.List(c.Request.Context(), store.ListFilter{Category: category})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": strconv.Itoa(saved) + " new " + category + " articles saved",
		"data":    all,
	})
}

// ListArticles GET /api/articles?source=&category=&limit=
func (h *ArticleHandler) ListArticles(c *gin.Context) {
	filter := store.ListFilter{
		Source:   c.Query("source"),
		Category: c.Query("category"),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(c, xerr.InvalidParam("limit must be an integer"))
			return
		}
		filter.Limit = limit
	}

	articles, err := h.articles.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(articles),
		"data":    articles,
	})
}

// LikeArticle POST /api/articles/:id/like
// 点赞是主操作；统计镜像和用户偏好都尽力更新，
// 失败只降级不拦截，响应里的 statsSynced 暴露降级结果。
func (h *ArticleHandler) LikeArticle(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, xerr.NotFound("article not found"))
		return
	}

	var body userIDBody
	_ = c.ShouldBindJSON(&body)

	article, err := h.articles.IncrementLikes(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	statsSynced := true
	if err := h.syncer.SyncArticle(c.Request.Context(), id, article.Likes); err != nil {
		statsSynced = false
		zLog.Error("sync stats after like", zap.String("articleId", id.Hex()), zap.Error(err))
	}

	h.updateLikedSet(c, body.UserID, id, true)

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Article liked successfully",
		"article":     article,
		"statsSynced": statsSynced,
	})
}

// UnlikeArticle POST /api/articles/:id/unlike
// 计数为 0 时不再扣减；统计镜像只在已有记录时更新
func (h *ArticleHandler) UnlikeArticle(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, xerr.NotFound("article not found"))
		return
	}

	var body userIDBody
	_ = c.ShouldBindJSON(&body)

	article, decremented, err := h.articles.DecrementLikes(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	statsSynced := true
	if decremented {
		if err := h.syncer.SyncArticleIfPresent(c.Request.Context(), id, article.Likes); err != nil {
			statsSynced = false
			zLog.Error("sync stats after unlike", zap.String("articleId", id.Hex()), zap.Error(err))
		}
	}

	h.updateLikedSet(c, body.UserID, id, false)

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Article unliked successfully",
		"article":     article,
		"statsSynced": statsSynced,
	})
}

// updateLikedSet 尽力维护用户喜欢集合，用户不存在或更新失败都不影响主操作
func (h *ArticleHandler) updateLikedSet(c *gin.Context, rawUserID string, articleID primitive.ObjectID, like bool) {
	userID, err := primitive.ObjectIDFromHex(rawUserID)
	if err != nil {
		return
	}

	if like {
		err = h.users.AddLikedArticle(c.Request.Context(), userID, articleID)
	} else {
		err = h.users.RemoveLikedArticle(c.Request.Context(), userID, articleID)
	}
	if err != nil && !xerr.IsNotFound(err) {
		zLog.Error("update liked articles", zap.String("userId", rawUserID), zap.Error(err))
	}
}

// FollowSource POST /api/sources/:name/follow
func (h *ArticleHandler) FollowSource(c *gin.Context) {
	h.updateFollowedSources(c, true)
}

// UnfollowSource POST /api/sources/:name/unfollow
func (h *ArticleHandler) UnfollowSource(c *gin.Context) {
	h.updateFollowedSources(c, false)
}

func (h *ArticleHandler) updateFollowedSources(c *gin.Context, follow bool) {
	name := c.Param("name")

	var body userIDBody
	_ = c.ShouldBindJSON(&body)

	verb := "followed"
	if !follow {
		verb = "unfollowed"
	}

	userID, err := primitive.ObjectIDFromHex(body.UserID)
	if err == nil {
		var sources []string
		if follow {
			sources, err = h.users.FollowSource(c.Request.Context(), userID, name)
		} else {
			sources, err = h.users.UnfollowSource(c.Request.Context(), userID, name)
		}
		if err == nil {
			c.JSON(http.StatusOK, gin.H{
				"success":         true,
				"message":         "Source " + verb + " successfully",
				"followedSources": sources,
			})
			return
		}
		if !xerr.IsNotFound(err) {
			respondError(c, err)
			return
		}
	}

	// 用户不存在时按前端匿名用户处理，保持接口可用
	sources := []string{}
	if follow {
		sources = []string{name}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"message":         "Source " + verb + " successfully",
		"followedSources": sources,
	})
}

// RecommendedArticles GET /api/recommended-articles?userId=
func (h *ArticleHandler) RecommendedArticles(c *gin.Context) {
	rawID := c.Query("userId")
	if rawID == "" {
		respondError(c, xerr.InvalidParam("userId query parameter is required"))
		return
	}

	userID, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		respondError(c, xerr.NotFound("user not found"))
		return
	}

	result, err := h.recommender.Recommend(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"count":      len(result.Articles),
		"data":       result.Articles,
		"categories": result.Counts,
	})
}

// GetUserData GET /api/users/:id
func (h *ArticleHandler) GetUserData(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, xerr.NotFound("user not found"))
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"id":              user.ID,
			"username":        user.Username,
			"email":           user.Email,
			"likedArticles":   user.LikedArticles,
			"followedSources": user.FollowedSources,
		},
	})
}

// CheckCategory GET /api/check-category?category=
func (h *ArticleHandler) CheckCategory(c *gin.Context) {
	category := c.Query("category")
	if category == "" {
		respondError(c, xerr.InvalidParam("Category parameter is required"))
		return
	}

	count, err := h.articles.CountByCategory(c.Request.Context(), category)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"hasArticles": count > 0,
		"count":       count,
	})
}

// SearchNews GET /api/search-news?q=&max=&page=
func (h *ArticleHandler) SearchNews(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		respondError(c, xerr.InvalidParam("Search query is required"))
		return
	}

	max, _ := strconv.Atoi(c.DefaultQuery("max", "10"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	result, err := h.news.Search(c.Request.Context(), q, max, page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"totalArticles": result.TotalArticles,
		"count":         len(result.Articles),
		"data":          result.Articles,
	})
}

// SearchLocal GET /api/search-local?q=&page=&limit=&category=
// 本地文本索引搜索，按相关度排序
func (h *ArticleHandler) SearchLocal(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		respondError(c, xerr.InvalidParam("Search query is required"))
		return
	}

	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "10"), 10, 64)
	if limit < 1 {
		limit = 10
	}

	articles, total, err := h.articles.TextSearch(c.Request.Context(), q, c.Query("category"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	if len(articles) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"message":       "No matching articles found",
			"count":         0,
			"data":          []*store.Article{},
			"totalArticles": 0,
			"totalPages":    0,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"count":         len(articles),
		"data":          articles,
		"totalArticles": total,
		"totalPages":    int64(math.Ceil(float64(total) / float64(limit))),
	})
}

type saveArticleRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	URL         string    `json:"url"`
	Image       string    `json:"image"`
	PublishedAt time.Time `json:"publishedAt"`
	SourceName  string    `json:"sourceName"`
	SourceURL   string    `json:"sourceUrl"`
	Category    string    `json:"category"`
	Source      *struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"source"`
}

// SaveArticle POST /api/save-article
// 保存外部文章；URL 已存在时返回旧记录，不产生重复
func (h *ArticleHandler) SaveArticle(c *gin.Context) {
	var req saveArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, xerr.InvalidParam("Article data is incomplete"))
		return
	}
	if req.Title == "" || req.URL == "" {
		respondError(c, xerr.InvalidParam("Article data is incomplete"))
		return
	}

	sourceName := req.SourceName
	sourceURL := req.SourceURL
	if req.Source != nil {
		if req.Source.Name != "" {
			sourceName = req.Source.Name
		}
		if req.Source.URL != "" {
			sourceURL = req.Source.URL
		}
	}
	if sourceName == "" {
		sourceName = "Unknown"
	}

	publishedAt := req.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = time.Now()
	}

	article := &store.Article{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		URL:         req.URL,
		Image:       req.Image,
		PublishedAt: publishedAt,
		SourceName:  sourceName,
		SourceURL:   sourceURL,
		Category:    req.Category,
	}

	saved, inserted, err := h.articles.SaveIfNew(c.Request.Context(), article)
	if err != nil {
		respondError(c, err)
		return
	}

	if !inserted {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Article already exists in database",
			"article": saved,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Article saved successfully",
		"article": saved,
	})
}
