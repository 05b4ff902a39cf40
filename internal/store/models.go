package store

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const CategoryGeneral = "general"

// Categories 固定的文章分类集合
var Categories = []string{
	"general", "world", "business", "nation", "technology",
	"entertainment", "sports", "science", "health",
}

func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Article 新闻文章，url 唯一，作为入库去重键
type Article struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description"`
	Content     string             `bson:"content,omitempty" json:"content"`
	URL         string             `bson:"url" json:"url"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty"`
	PublishedAt time.Time          `bson:"publishedAt" json:"publishedAt"`
	SourceName  string             `bson:"sourceName,omitempty" json:"sourceName,omitempty"`
	SourceURL   string             `bson:"sourceUrl,omitempty" json:"sourceUrl,omitempty"`
	Category    string             `bson:"category" json:"category"`
	Likes       int64              `bson:"likes" json:"likes"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// ViewEntry 浏览历史的一条追加记录
type ViewEntry struct {
	Count int64     `bson:"count" json:"count"`
	Date  time.Time `bson:"date" json:"date"`
}

// ArticleStats 单篇文章的统计记录，articleId 唯一。
// likes 是 Article.Likes 的镜像，靠定时同步收敛，两者之间
// 最长可能滞后一个同步周期（12h）。
type ArticleStats struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ArticleID     primitive.ObjectID `bson:"articleId" json:"articleId"`
	Views         int64              `bson:"views" json:"views"`
	Likes         int64              `bson:"likes" json:"likes"`
	LastViewed    time.Time          `bson:"lastViewed" json:"lastViewed"`
	TrendingScore float64            `bson:"trendingScore" json:"trendingScore"`
	// ViewHistory 只追加，留作后续趋势分析
	ViewHistory []ViewEntry `bson:"viewHistory" json:"viewHistory"`
	// UniqueVisitors 记录 userId 或请求来源标识，用于浏览去重
	UniqueVisitors []string `bson:"uniqueVisitors" json:"uniqueVisitors"`
}

// HasVisitor 判断访客是否已计入
func (s *ArticleStats) HasVisitor(visitorID string) bool {
	for _, v := range s.UniqueVisitors {
		if v == visitorID {
			return true
		}
	}
	return false
}

// User 用户偏好数据（喜欢的文章、关注的来源）
type User struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username        string               `bson:"username" json:"username"`
	Email           string               `bson:"email" json:"email"`
	LikedArticles   []primitive.ObjectID `bson:"likedArticles" json:"likedArticles"`
	FollowedSources []string             `bson:"followedSources" json:"followedSources"`
}

// HasLiked 判断用户是否已喜欢某文章
func (u *User) HasLiked(articleID primitive.ObjectID) bool {
	for _, id := range u.LikedArticles {
		if id == articleID {
			return true
		}
	}
	return false
}

// FollowsSource 判断用户是否关注某来源
func (u *User) FollowsSource(name string) bool {
	for _, s := range u.FollowedSources {
		if s == name {
			return true
		}
	}
	return false
}
