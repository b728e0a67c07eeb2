package resource

import (
	"context"
	"net/url"

	resourceRepo "pgmanager/database/repository/resource"
	"pgmanager/models"
)

// Entity constrains P to be a pointer to T that carries the shared Base.
type Entity[T any] interface {
	*T
	models.Entity
}

// ResourceService is the uniform list/get/create/update/delete contract every
// administrative resource is served through.
type ResourceService[T any] interface {
	List(ctx context.Context, params url.Values) ([]T, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, doc *T) (*T, error)
	// Update merges the JSON object in patch onto the stored document.
	Update(ctx context.Context, id string, patch []byte) (*T, error)
	Delete(ctx context.Context, id string) (*T, error)
	Definition() Definition[T]
}

// Hooks carry the per-resource rules. Any of them may be nil.
type Hooks[T any] struct {
	BeforeCreate func(ctx context.Context, doc *T) error
	AfterCreate  func(ctx context.Context, doc *T)
	// BeforeUpdate sees the stored document and the merged result; it may
	// adjust merged before it is written.
	BeforeUpdate func(ctx context.Context, old, merged *T) error
	BeforeDelete func(ctx context.Context, doc *T) error
}

// Definition describes one resource.
type Definition[T any] struct {
	Spec resourceRepo.Spec
	// Filters maps query parameters to document fields for List.
	Filters map[string]string
	// Protected lists JSON fields that Update never accepts from clients.
	Protected []string
	// Pinned lists stored fields that other writers change through conditional
	// updates. Update only applies while they still hold the values it read.
	Pinned []string
	Hooks  Hooks[T]
}
