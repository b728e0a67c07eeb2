package resourceRepo

import (
	"context"
	"fmt"
	"time"

	"pgmanager/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoRepo implements Repository on a single collection.
type MongoRepo[T any] struct {
	coll *mongo.Collection
	spec Spec
}

// NewMongoRepo creates the repository and ensures its indexes.
func NewMongoRepo[T any](db *mongo.Database, spec Spec) *MongoRepo[T] {
	repo := &MongoRepo[T]{coll: db.Collection(spec.Collection), spec: spec}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Error("failed to create indexes", zap.String("collection", spec.Collection), zap.Error(err))
	}
	return repo
}

// Collection exposes the underlying collection to sibling repositories.
func (r *MongoRepo[T]) Collection() *mongo.Collection { return r.coll }

func (r *MongoRepo[T]) Spec() Spec { return r.spec }

func (r *MongoRepo[T]) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if r.spec.SoftDelete {
		indexModels = append(indexModels, mongo.IndexModel{Keys: bson.D{{Key: "isActive", Value: 1}}})
	}
	indexModels = append(indexModels, r.spec.Indexes...)

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// populateStages builds the $lookup stages that fill refs.<name>.
func (r *MongoRepo[T]) populateStages() mongo.Pipeline {
	var stages mongo.Pipeline
	for _, l := range r.spec.Lookups {
		tmp := "_ref_" + l.As
		stages = append(stages,
			bson.D{{Key: "$lookup", Value: bson.D{
				{Key: "from", Value: l.From},
				{Key: "let", Value: bson.D{{Key: "ref", Value: "$" + l.LocalField}}},
				{Key: "pipeline", Value: bson.A{
					bson.D{{Key: "$match", Value: bson.D{{Key: "$expr", Value: bson.D{
						{Key: "$eq", Value: bson.A{"$id", "$$ref"}},
					}}}}},
					bson.D{{Key: "$limit", Value: 1}},
					bson.D{{Key: "$project", Value: bson.D{
						{Key: "_id", Value: 0},
						{Key: "id", Value: 1},
						{Key: "label", Value: bson.D{{Key: "$toString", Value: "$" + l.LabelField}}},
					}}},
				}},
				{Key: "as", Value: tmp},
			}}},
			bson.D{{Key: "$set", Value: bson.D{
				{Key: "refs." + l.As, Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{"$" + tmp, 0}}}},
			}}},
			bson.D{{Key: "$unset", Value: tmp}},
		)
	}
	return stages
}

func (r *MongoRepo[T]) List(ctx context.Context, q Query) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultTimeout)
	defer cancel()

	filter := q.Filter
	if filter == nil {
		filter = bson.M{}
	}
	sort := q.Sort
	if len(sort) == 0 {
		sort = r.spec.DefaultSort
	}

	pipeline := mongo.Pipeline{{{Key: "$match", Value: filter}}}
	if len(sort) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: sort}})
	}
	if q.Skip > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: q.Skip}})
	}
	if q.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: q.Limit}})
	}
	pipeline = append(pipeline, r.populateStages()...)

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.spec.Collection, err)
	}
	defer cursor.Close(ctx)

	results := []T{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", r.spec.Collection, err)
	}
	return results, nil
}

func (r *MongoRepo[T]) GetByID(ctx context.Context, id string) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"id": id}}},
		{{Key: "$limit", Value: 1}},
	}
	pipeline = append(pipeline, r.populateStages()...)

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s %s: %w", r.spec.Entity, id, err)
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return nil, fmt.Errorf("failed to fetch %s %s: %w", r.spec.Entity, id, err)
		}
		return nil, utils.NotFound("%s %s not found", r.spec.Entity, id)
	}
	var doc T
	if err := cursor.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s %s: %w", r.spec.Entity, id, err)
	}
	return &doc, nil
}

func (r *MongoRepo[T]) Create(ctx context.Context, doc *T) error {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return utils.FromMongo(err, r.spec.Entity, "")
		}
		return fmt.Errorf("failed to create %s: %w", r.spec.Entity, err)
	}
	return nil
}

func (r *MongoRepo[T]) UpdateIf(ctx context.Context, id string, guard bson.M, set bson.M, unset []string) error {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultTimeout)
	defer cancel()

	filter, update := guardedUpdate(id, guard, set, unset, time.Now())
	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return utils.FromMongo(err, r.spec.Entity, id)
		}
		return fmt.Errorf("failed to update %s %s: %w", r.spec.Entity, id, err)
	}
	if result.MatchedCount == 0 {
		n, err := r.coll.CountDocuments(ctx, bson.M{"id": id})
		if err != nil {
			return fmt.Errorf("failed to update %s %s: %w", r.spec.Entity, id, err)
		}
		if n == 0 {
			return utils.NotFound("%s %s not found", r.spec.Entity, id)
		}
		return Stale(r.spec.Entity, id)
	}
	return nil
}

// guardedUpdate builds the filter and update document for UpdateIf.
func guardedUpdate(id string, guard, set bson.M, unset []string, now time.Time) (bson.M, bson.M) {
	filter := bson.M{"id": id}
	for k, v := range guard {
		filter[k] = v
	}
	fields := bson.M{"updatedAt": now}
	for k, v := range set {
		fields[k] = v
	}
	update := bson.M{"$set": fields}
	if len(unset) > 0 {
		drop := bson.M{}
		for _, k := range unset {
			drop[k] = ""
		}
		update["$unset"] = drop
	}
	return filter, update
}

func (r *MongoRepo[T]) UpdateFields(ctx context.Context, id string, set bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultTimeout)
	defer cancel()

	fields := bson.M{"updatedAt": time.Now()}
	for k, v := range set {
		fields[k] = v
	}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update %s %s: %w", r.spec.Entity, id, err)
	}
	if result.MatchedCount == 0 {
		return utils.NotFound("%s %s not found", r.spec.Entity, id)
	}
	return nil
}

func (r *MongoRepo[T]) UpdateMany(ctx context.Context, filter bson.M, set bson.M) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultTimeout)
	defer cancel()

	fields := bson.M{"updatedAt": time.Now()}
	for k, v := range set {
		fields[k] = v
	}
	result, err := r.coll.UpdateMany(ctx, filter, bson.M{"$set": fields})
	if err != nil {
		return 0, fmt.Errorf("failed to update %s: %w", r.spec.Collection, err)
	}
	return result.ModifiedCount, nil
}

func (r *MongoRepo[T]) SoftDelete(ctx context.Context, id string) error {
	return r.UpdateFields(ctx, id, bson.M{"isActive": false})
}

func (r *MongoRepo[T]) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultTimeout)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", r.spec.Entity, id, err)
	}
	if result.DeletedCount == 0 {
		return utils.NotFound("%s %s not found", r.spec.Entity, id)
	}
	return nil
}

func (r *MongoRepo[T]) Count(ctx context.Context, filter bson.M) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultTimeout)
	defer cancel()

	if filter == nil {
		filter = bson.M{}
	}
	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", r.spec.Collection, err)
	}
	return n, nil
}
