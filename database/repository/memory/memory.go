// Package memoryRepo holds in-memory repositories with the same conditional
// semantics as the MongoDB ones. Service tests run against them.
package memoryRepo

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	resourceRepo "pgmanager/database/repository/resource"
	"pgmanager/models"
	"pgmanager/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type entity[T any] interface {
	*T
	models.Entity
}

// Repo is a map-backed resourceRepo.Repository. Documents are copied on the
// way in and out so callers never share state with the store.
type Repo[T any, P entity[T]] struct {
	mu    sync.Mutex
	spec  resourceRepo.Spec
	docs  map[string]*T
	order []string
}

func NewRepo[T any, P entity[T]](spec resourceRepo.Spec) *Repo[T, P] {
	return &Repo[T, P]{spec: spec, docs: map[string]*T{}}
}

func clone[T any](doc *T) *T {
	data, err := bson.Marshal(doc)
	if err != nil {
		panic(fmt.Sprintf("memoryRepo: marshal: %v", err))
	}
	var out T
	if err := bson.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("memoryRepo: unmarshal: %v", err))
	}
	return &out
}

func asM(doc any) bson.M {
	data, err := bson.Marshal(doc)
	if err != nil {
		panic(fmt.Sprintf("memoryRepo: marshal: %v", err))
	}
	var m bson.M
	if err := bson.Unmarshal(data, &m); err != nil {
		panic(fmt.Sprintf("memoryRepo: unmarshal: %v", err))
	}
	return m
}

// Matches evaluates the subset of query operators the services use:
// equality, $in, $ne, $exists and $gt/$gte/$lt/$lte on numbers.
func Matches(doc any, filter bson.M) bool {
	m := asM(doc)
	for field, want := range filter {
		got, present := m[field]
		if ops, ok := want.(bson.M); ok {
			for op, arg := range ops {
				if !matchOp(op, got, present, arg) {
					return false
				}
			}
			continue
		}
		if !present || !equal(got, want) {
			return false
		}
	}
	return true
}

func matchOp(op string, got any, present bool, arg any) bool {
	switch op {
	case "$in":
		for _, v := range toSlice(arg) {
			if present && equal(got, v) {
				return true
			}
		}
		return false
	case "$ne":
		return !present || !equal(got, arg)
	case "$exists":
		want, _ := arg.(bool)
		return present == want
	case "$gt", "$gte", "$lt", "$lte":
		a, ok1 := toFloat(got)
		b, ok2 := toFloat(arg)
		if !present || !ok1 || !ok2 {
			return false
		}
		switch op {
		case "$gt":
			return a > b
		case "$gte":
			return a >= b
		case "$lt":
			return a < b
		default:
			return a <= b
		}
	}
	panic("memoryRepo: unsupported operator " + op)
}

func toSlice(v any) []any {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return []any{v}
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case primitive.DateTime:
		return float64(n), true
	case time.Time:
		return float64(n.UnixMilli()), true
	}
	return 0, false
}

func equal(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
	}
	return reflect.DeepEqual(a, b)
}

// Put stores doc as-is, bypassing the uniqueness checks of Create.
func (r *Repo[T, P]) Put(doc *T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := P(doc).GetID()
	if _, ok := r.docs[id]; !ok {
		r.order = append(r.order, id)
	}
	r.docs[id] = clone(doc)
}

// Mutate applies fn to the stored document under the store lock.
// It returns false when no document has the id.
func (r *Repo[T, P]) Mutate(id string, fn func(doc *T) bool) (found, changed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return false, false
	}
	return true, fn(doc)
}

// Find returns copies of the documents matching filter in insertion order.
func (r *Repo[T, P]) Find(filter bson.M) []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []T
	for _, id := range r.order {
		doc, ok := r.docs[id]
		if ok && Matches(doc, filter) {
			out = append(out, *clone(doc))
		}
	}
	return out
}

func (r *Repo[T, P]) List(ctx context.Context, q resourceRepo.Query) ([]T, error) {
	results := r.Find(q.Filter)
	sortBy := q.Sort
	if len(sortBy) == 0 {
		sortBy = r.spec.DefaultSort
	}
	if len(sortBy) > 0 {
		key, dir := sortBy[0].Key, sortBy[0].Value
		sort.SliceStable(results, func(i, j int) bool {
			a, b := asM(&results[i])[key], asM(&results[j])[key]
			less := fmt.Sprint(a) < fmt.Sprint(b)
			if fa, ok := toFloat(a); ok {
				fb, _ := toFloat(b)
				less = fa < fb
			}
			if dir == -1 {
				return !less && fmt.Sprint(a) != fmt.Sprint(b)
			}
			return less
		})
	}
	if q.Skip > 0 {
		if q.Skip >= int64(len(results)) {
			return []T{}, nil
		}
		results = results[q.Skip:]
	}
	if q.Limit > 0 && q.Limit < int64(len(results)) {
		results = results[:q.Limit]
	}
	if results == nil {
		results = []T{}
	}
	return results, nil
}

func (r *Repo[T, P]) GetByID(ctx context.Context, id string) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, utils.NotFound("%s %s not found", r.spec.Entity, id)
	}
	return clone(doc), nil
}

func (r *Repo[T, P]) Create(ctx context.Context, doc *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := P(doc).GetID()
	if _, ok := r.docs[id]; ok {
		return utils.Conflict("%s already exists", r.spec.Entity)
	}
	r.docs[id] = clone(doc)
	r.order = append(r.order, id)
	return nil
}

func withFields[T any](doc *T, set bson.M, unset ...string) (*T, error) {
	m := asM(doc)
	for k, v := range set {
		m[k] = v
	}
	for _, k := range unset {
		delete(m, k)
	}
	data, err := bson.Marshal(m)
	if err != nil {
		return nil, err
	}
	var out T
	if err := bson.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Repo[T, P]) UpdateIf(ctx context.Context, id string, guard bson.M, set bson.M, unset []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return utils.NotFound("%s %s not found", r.spec.Entity, id)
	}
	if !Matches(doc, guard) {
		return resourceRepo.Stale(r.spec.Entity, id)
	}
	fields := bson.M{"updatedAt": time.Now()}
	for k, v := range set {
		fields[k] = v
	}
	out, err := withFields(doc, fields, unset...)
	if err != nil {
		return err
	}
	r.docs[id] = out
	return nil
}

func (r *Repo[T, P]) UpdateFields(ctx context.Context, id string, set bson.M) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return utils.NotFound("%s %s not found", r.spec.Entity, id)
	}
	out, err := withFields(doc, set)
	if err != nil {
		return err
	}
	r.docs[id] = out
	return nil
}

func (r *Repo[T, P]) UpdateMany(ctx context.Context, filter bson.M, set bson.M) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range r.order {
		doc, ok := r.docs[id]
		if !ok || !Matches(doc, filter) {
			continue
		}
		out, err := withFields(doc, set)
		if err != nil {
			return n, err
		}
		r.docs[id] = out
		n++
	}
	return n, nil
}

func (r *Repo[T, P]) SoftDelete(ctx context.Context, id string) error {
	return r.UpdateFields(ctx, id, bson.M{"isActive": false})
}

func (r *Repo[T, P]) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return utils.NotFound("%s %s not found", r.spec.Entity, id)
	}
	delete(r.docs, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *Repo[T, P]) Count(ctx context.Context, filter bson.M) (int64, error) {
	return int64(len(r.Find(filter))), nil
}
