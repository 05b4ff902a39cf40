package store

import (
	"context"
	"errors"
	"time"

	"github.com/iceymoss/news-hub/pkg/xerr"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type StatsRepo struct {
	coll *mongo.Collection
}

func NewStatsRepo(database *mongo.Database, collection string) *StatsRepo {
	return &StatsRepo{coll: database.Collection(collection)}
}

func (r *StatsRepo) Get(ctx context.Context, articleID primitive.ObjectID) (*ArticleStats, error) {
	var stats ArticleStats
	err := r.coll.FindOne(ctx, bson.M{"articleId": articleID}).Decode(&stats)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, xerr.NotFound("article stats not found")
	}
	if err != nil {
		return nil, xerr.Store("find article stats", err)
	}
	return &stats, nil
}

// Save 以 articleId 为键整条落盘，不存在则插入
func (r *StatsRepo) Save(ctx context.Context, stats *ArticleStats) error {
	_, err := r.coll.ReplaceOne(ctx,
		bson.M{"articleId": stats.ArticleID},
		stats,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return xerr.Store("save article stats", err)
	}
	return nil
}

// UpsertLikes 把文章的权威点赞数写入统计记录。
// 记录不存在时插入默认值；已存在的 views/lastViewed/trendingScore
// 只在 $setOnInsert 中出现，不会被覆盖。
func (r *StatsRepo) UpsertLikes(ctx context.Context, articleID primitive.ObjectID, likes int64, now time.Time) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"articleId": articleID},
		bson.M{
			"$set": bson.M{"likes": likes},
			"$setOnInsert": bson.M{
				"views":          int64(0),
				"lastViewed":     now,
				"trendingScore":  float64(0),
				"viewHistory":    []ViewEntry{},
				"uniqueVisitors": []string{},
			},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return xerr.Store("upsert stats likes", err)
	}
	return nil
}

// UpdateScore 只回写热度分，避免覆盖并发的浏览更新
func (r *StatsRepo) UpdateScore(ctx context.Context, articleID primitive.ObjectID, score float64) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"articleId": articleID},
		bson.M{"$set": bson.M{"trendingScore": score}},
	)
	if err != nil {
		return xerr.Store("update trending score", err)
	}
	return nil
}

func (r *StatsRepo) List(ctx context.Context) ([]*ArticleStats, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, xerr.Store("find article stats", err)
	}
	defer cursor.Close(ctx)

	var list []*ArticleStats
	if err := cursor.All(ctx, &list); err != nil {
		return nil, xerr.Store("decode article stats", err)
	}
	return list, nil
}

// TopByScore 按热度分倒序取前 N 条
func (r *StatsRepo) TopByScore(ctx context.Context, limit int64) ([]*ArticleStats, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "trendingScore", Value: -1}}).
		SetLimit(limit)
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, xerr.Store("find trending stats", err)
	}
	defer cursor.Close(ctx)

	var list []*ArticleStats
	if err := cursor.All(ctx, &list); err != nil {
		return nil, xerr.Store("decode trending stats", err)
	}
	return list, nil
}

// Delete 删除统计记录，记录已不存在不算错误。
// 返回是否真正删除，便于并发清理互相容忍。
func (r *StatsRepo) Delete(ctx context.Context, articleID primitive.ObjectID) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"articleId": articleID})
	if err != nil {
		return false, xerr.Store("delete article stats", err)
	}
	return res.DeletedCount > 0, nil
}
