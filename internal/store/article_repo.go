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

type ArticleRepo struct {
	coll *mongo.Collection
}

func NewArticleRepo(database *mongo.Database, collection string) *ArticleRepo {
	return &ArticleRepo{coll: database.Collection(collection)}
}

// SaveIfNew 按 URL 去重入库：已存在则返回旧记录，不产生重复。
// 返回值第二项表示本次是否新插入。
func (r *ArticleRepo) SaveIfNew(ctx context.Context, article *Article) (*Article, bool, error) {
	var existing Article
	err := r.coll.FindOne(ctx, bson.M{"url": article.URL}).Decode(&existing)
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, xerr.Store("find article by url", err)
	}

	if article.Category == "" || !ValidCategory(article.Category) {
		article.Category = CategoryGeneral
	}
	if article.CreatedAt.IsZero() {
		article.CreatedAt = time.Now()
	}

	res, err := r.coll.InsertOne(ctx, article)
	if err != nil {
		// 并发入库撞到唯一索引，按旧记录处理
		if mongo.IsDuplicateKeyError(err) {
			if ferr := r.coll.FindOne(ctx, bson.M{"url": article.URL}).Decode(&existing); ferr == nil {
				return &existing, false, nil
			}
		}
		return nil, false, xerr.Store("insert article", err)
	}

	article.ID = res.InsertedID.(primitive.ObjectID)
	return article, true, nil
}

func (r *ArticleRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*Article, error) {
	var article Article
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&article)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, xerr.NotFound("article not found")
	}
	if err != nil {
		return nil, xerr.Store("find article", err)
	}
	return &article, nil
}

// ListFilter 文章列表的筛选条件
type ListFilter struct {
	Source   string
	Category string
	Limit    int64
}

// List 按发布时间倒序返回文章
func (r *ArticleRepo) List(ctx context.Context, filter ListFilter) ([]*Article, error) {
	query := bson.M{}
	if filter.Source != "" {
		query["sourceName"] = filter.Source
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}

	opts := options.Find().SetSort(bson.D{{Key: "publishedAt", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}

	return r.find(ctx, query, opts)
}

// ListLikeCounts 只取 _id 和 likes，供点赞同步任务遍历全量文章
func (r *ArticleRepo) ListLikeCounts(ctx context.Context) ([]*Article, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1, "likes": 1})
	return r.find(ctx, bson.M{}, opts)
}

func (r *ArticleRepo) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, xerr.Store("count article", err)
	}
	return count > 0, nil
}

// ByIDs 按 id 集合取文章，发布时间倒序
func (r *ArticleRepo) ByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*Article, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "publishedAt", Value: -1}})
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
}

// BySourcesExcluding 按来源取文章并排除指定 id，发布时间倒序
func (r *ArticleRepo) BySourcesExcluding(ctx context.Context, sources []string, exclude []primitive.ObjectID) ([]*Article, error) {
	if len(sources) == 0 {
		return nil, nil
	}
	query := bson.M{"sourceName": bson.M{"$in": sources}}
	if len(exclude) > 0 {
		query["_id"] = bson.M{"$nin": exclude}
	}
	opts := options.Find().SetSort(bson.D{{Key: "publishedAt", Value: -1}})
	return r.find(ctx, query, opts)
}

// Newest 系统内最新发布的 N 篇文章
func (r *ArticleRepo) Newest(ctx context.Context, limit int64) ([]*Article, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "publishedAt", Value: -1}}).
		SetLimit(limit)
	return r.find(ctx, bson.M{}, opts)
}

// IncrementLikes 点赞计数 +1，返回更新后的文章
func (r *ArticleRepo) IncrementLikes(ctx context.Context, id primitive.ObjectID) (*Article, error) {
	var article Article
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"likes": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&article)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, xerr.NotFound("article not found")
	}
	if err != nil {
		return nil, xerr.Store("increment likes", err)
	}
	return &article, nil
}

// DecrementLikes 点赞计数 -1，计数为 0 时不再扣减。
// 返回更新后的文章和是否真正扣减。
func (r *ArticleRepo) DecrementLikes(ctx context.Context, id primitive.ObjectID) (*Article, bool, error) {
	var article Article
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "likes": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"likes": -1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&article)
	if err == nil {
		return &article, true, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, xerr.Store("decrement likes", err)
	}

	// 计数已经是 0，或文章不存在
	current, gerr := r.GetByID(ctx, id)
	if gerr != nil {
		return nil, false, gerr
	}
	return current, false, nil
}

func (r *ArticleRepo) CountByCategory(ctx context.Context, category string) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"category": category})
	if err != nil {
		return 0, xerr.Store("count category articles", err)
	}
	return count, nil
}

// TextSearch 基于文本索引的本地搜索，按相关度排序并分页
func (r *ArticleRepo) TextSearch(ctx context.Context, q, category string, page, limit int64) ([]*Article, int64, error) {
	query := bson.M{"$text": bson.M{"$search": q}}
	if category != "" && category != "all" {
		query["category"] = category
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	opts := options.Find().
		SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}}).
		SetSort(bson.M{"score": bson.M{"$meta": "textScore"}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	articles, err := r.find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, xerr.Store("count search results", err)
	}
	return articles, total, nil
}

func (r *ArticleRepo) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]*Article, error) {
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, xerr.Store("find articles", err)
	}
	defer cursor.Close(ctx)

	var list []*Article
	if err := cursor.All(ctx, &list); err != nil {
		return nil, xerr.Store("decode articles", err)
	}
	return list, nil
}
