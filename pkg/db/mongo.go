package db

import (
	"context"
	"sync"
	"time"

	conf "github.com/iceymoss/news-hub/pkg/config"
	zLog "github.com/iceymoss/news-hub/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DatabaseName = "newshub"

	CollArticles     = "articles"
	CollArticleStats = "article_stats"
	CollUsers        = "users"
)

var mongoConn = make(map[string]*mongo.Client)
var mongoMutex sync.RWMutex

func GetMongoConn() *mongo.Client {
	mongoMutex.RLock()
	conn, ok := mongoConn["main"]
	mongoMutex.RUnlock()
	if !ok {
		mongoMutex.Lock()
		defer mongoMutex.Unlock()
		if conn, ok = mongoConn["main"]; ok {
			return conn
		}
		mongoUri := conf.ServiceConf.Mongo.Link
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoUri).SetMaxPoolSize(120))
		if err != nil {
			zLog.Error(err.Error())
			return nil
		}

		if err := ensureIndexes(ctx, client); err != nil {
			zLog.Error("ensure indexes: " + err.Error())
		}

		mongoConn["main"] = client
		conn = client
	}

	return conn
}

func GetDatabase() *mongo.Database {
	client := GetMongoConn()
	if client == nil {
		return nil
	}
	return client.Database(DatabaseName)
}

// ensureIndexes 建立集合索引：
// articles.url 唯一索引用于按 URL 去重入库，
// article_stats.articleId 唯一索引保证一篇文章最多一条统计记录，
// articles 文本索引支持本地全文搜索。
func ensureIndexes(ctx context.Context, client *mongo.Client) error {
	database := client.Database(DatabaseName)

	articleIdx := database.Collection(CollArticles).Indexes()
	if _, err := articleIdx.CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "url", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "title", Value: "text"},
				{Key: "description", Value: "text"},
				{Key: "content", Value: "text"},
			},
		},
		{
			Keys: bson.D{{Key: "publishedAt", Value: -1}},
		},
	}); err != nil {
		return err
	}

	statsIdx := database.Collection(CollArticleStats).Indexes()
	if _, err := statsIdx.CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "articleId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "trendingScore", Value: -1}},
		},
	}); err != nil {
		return err
	}

	return nil
}
