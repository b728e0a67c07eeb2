package resourceRepo

import (
	"context"
	"errors"
	"fmt"

	"pgmanager/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Repository is the storage contract shared by every administrative resource.
type Repository[T any] interface {
	// List returns documents matching q with references populated.
	List(ctx context.Context, q Query) ([]T, error)
	// GetByID returns one document with references populated.
	GetByID(ctx context.Context, id string) (*T, error)
	// Create inserts a new document.
	Create(ctx context.Context, doc *T) error
	// UpdateIf applies set and unset to the document with the given id while it
	// still matches guard. A document that no longer matches yields a conflict
	// wrapping ErrStale.
	UpdateIf(ctx context.Context, id string, guard bson.M, set bson.M, unset []string) error
	// UpdateFields applies a $set to a single document.
	UpdateFields(ctx context.Context, id string, set bson.M) error
	// UpdateMany applies a $set to every document matching filter and returns
	// the number of documents modified.
	UpdateMany(ctx context.Context, filter bson.M, set bson.M) (int64, error)
	// SoftDelete clears isActive. Deleting an inactive document succeeds.
	SoftDelete(ctx context.Context, id string) error
	// Delete removes the document.
	Delete(ctx context.Context, id string) error
	// Count returns the number of documents matching filter.
	Count(ctx context.Context, filter bson.M) (int64, error)
}

// ErrStale marks a conditional write that lost a race with another writer.
var ErrStale = errors.New("document changed concurrently")

// Stale reports that the stored entity no longer matches what the caller read.
func Stale(entity, id string) error {
	return &utils.AppError{
		Kind:    utils.KindConflict,
		Message: fmt.Sprintf("%s %s was modified concurrently, retry the request", entity, id),
		Err:     ErrStale,
	}
}

// Lookup populates refs.<As> with {id, label} taken from the document in
// collection From whose id equals LocalField.
type Lookup struct {
	From       string
	LocalField string
	As         string
	LabelField string
}

// Spec describes how a resource is stored.
type Spec struct {
	Entity      string
	Collection  string
	SoftDelete  bool
	DefaultSort bson.D
	Lookups     []Lookup
	Indexes     []mongo.IndexModel
}

// Query narrows a List call.
type Query struct {
	Filter bson.M
	Sort   bson.D
	Limit  int64
	Skip   int64
}
