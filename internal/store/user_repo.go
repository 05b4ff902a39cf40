package store

import (
	"context"
	"errors"

	"github.com/iceymoss/news-hub/pkg/xerr"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepo struct {
	coll *mongo.Collection
}

func NewUserRepo(database *mongo.Database, collection string) *UserRepo {
	return &UserRepo{coll: database.Collection(collection)}
}

func (r *UserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	var user User
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, xerr.NotFound("user not found")
	}
	if err != nil {
		return nil, xerr.Store("find user", err)
	}
	return &user, nil
}

// AddLikedArticle 把文章加入用户喜欢集合，重复添加是幂等的
func (r *UserRepo) AddLikedArticle(ctx context.Context, userID, articleID primitive.ObjectID) error {
	return r.updatePrefs(ctx, userID, bson.M{"$addToSet": bson.M{"likedArticles": articleID}})
}

func (r *UserRepo) RemoveLikedArticle(ctx context.Context, userID, articleID primitive.ObjectID) error {
	return r.updatePrefs(ctx, userID, bson.M{"$pull": bson.M{"likedArticles": articleID}})
}

// FollowSource 关注来源并返回最新的关注列表
func (r *UserRepo) FollowSource(ctx context.Context, userID primitive.ObjectID, source string) ([]string, error) {
	return r.updateSources(ctx, userID, bson.M{"$addToSet": bson.M{"followedSources": source}})
}

func (r *UserRepo) UnfollowSource(ctx context.Context, userID primitive.ObjectID, source string) ([]string, error) {
	return r.updateSources(ctx, userID, bson.M{"$pull": bson.M{"followedSources": source}})
}

func (r *UserRepo) updatePrefs(ctx context.Context, userID primitive.ObjectID, update bson.M) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return xerr.Store("update user preferences", err)
	}
	if res.MatchedCount == 0 {
		return xerr.NotFound("user not found")
	}
	return nil
}

func (r *UserRepo) updateSources(ctx context.Context, userID primitive.ObjectID, update bson.M) ([]string, error) {
	var user User
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": userID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, xerr.NotFound("user not found")
	}
	if err != nil {
		return nil, xerr.Store("update followed sources", err)
	}
	return user.FollowedSources, nil
}
