package resource

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"time"

	resourceRepo "pgmanager/database/repository/resource"
	"pgmanager/models"
	"pgmanager/services/activity"
	"pgmanager/utils"

	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const (
	maxListLimit      = 500
	maxUpdateAttempts = 3
)

// alwaysProtected fields are server-owned on every resource.
var alwaysProtected = []string{"id", "createdAt", "updatedAt", "refs"}

type activatable interface{ Activate() }

// DefaultResourceService is the production implementation.
type DefaultResourceService[T any, P Entity[T]] struct {
	Repo     resourceRepo.Repository[T]
	Def      Definition[T]
	Activity activity.ActivityService
	Now      func() time.Time
}

func NewDefaultResourceService[T any, P Entity[T]](repo resourceRepo.Repository[T], def Definition[T], act activity.ActivityService) *DefaultResourceService[T, P] {
	return &DefaultResourceService[T, P]{Repo: repo, Def: def, Activity: act, Now: time.Now}
}

func (s *DefaultResourceService[T, P]) Definition() Definition[T] { return s.Def }

// ListQuery turns request parameters into a repository query.
func ListQuery(spec resourceRepo.Spec, filters map[string]string, params url.Values) resourceRepo.Query {
	filter := bson.M{}
	if spec.SoftDelete && params.Get("all") != "true" {
		filter["isActive"] = params.Get("isActive") != "false"
	}
	for param, field := range filters {
		v := params.Get(param)
		if v == "" {
			continue
		}
		if b, err := strconv.ParseBool(v); err == nil && (v == "true" || v == "false") {
			filter[field] = b
		} else {
			filter[field] = v
		}
	}

	q := resourceRepo.Query{Filter: filter}
	if n, err := strconv.ParseInt(params.Get("limit"), 10, 64); err == nil && n > 0 {
		q.Limit = min(n, maxListLimit)
	}
	if n, err := strconv.ParseInt(params.Get("skip"), 10, 64); err == nil && n > 0 {
		q.Skip = n
	}
	return q
}

func (s *DefaultResourceService[T, P]) List(ctx context.Context, params url.Values) ([]T, error) {
	return s.Repo.List(ctx, ListQuery(s.Def.Spec, s.Def.Filters, params))
}

func (s *DefaultResourceService[T, P]) Get(ctx context.Context, id string) (*T, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *DefaultResourceService[T, P]) Create(ctx context.Context, doc *T) (*T, error) {
	p := P(doc)
	p.SetID(uuid.New().String())
	p.Detach()
	p.Stamp(s.Now())
	if a, ok := any(doc).(activatable); ok {
		a.Activate()
	}

	if h := s.Def.Hooks.BeforeCreate; h != nil {
		if err := h(ctx, doc); err != nil {
			return nil, err
		}
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		return nil, err
	}
	if h := s.Def.Hooks.AfterCreate; h != nil {
		h(ctx, doc)
	}
	s.record(ctx, activity.ActionCreate, p.GetID())
	return s.fresh(ctx, doc), nil
}

func (s *DefaultResourceService[T, P]) Update(ctx context.Context, id string, patch []byte) (*T, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &fields); err != nil {
		return nil, utils.Validation("request body must be a JSON object")
	}
	for _, f := range alwaysProtected {
		delete(fields, f)
	}
	for _, f := range s.Def.Protected {
		delete(fields, f)
	}
	cleaned, err := json.Marshal(fields)
	if err != nil {
		return nil, utils.Internal(err, "failed to prepare update")
	}

	for attempt := 1; ; attempt++ {
		merged, err := s.apply(ctx, id, cleaned)
		if errors.Is(err, resourceRepo.ErrStale) && attempt < maxUpdateAttempts {
			utils.GetLogger().Debug("retrying update after concurrent write",
				zap.String("entity", s.Def.Spec.Entity), zap.String("id", id), zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, err
		}
		s.record(ctx, activity.ActionUpdate, id)
		return s.fresh(ctx, merged), nil
	}
}

// apply merges cleaned onto the stored document and writes only the fields
// that changed, guarded by the pinned values it read.
func (s *DefaultResourceService[T, P]) apply(ctx context.Context, id string, cleaned []byte) (*T, error) {
	existing, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := *existing
	if err := json.Unmarshal(cleaned, &merged); err != nil {
		return nil, utils.Validation("invalid field value: %v", err)
	}
	if err := binding.Validator.ValidateStruct(&merged); err != nil {
		return nil, utils.Validation("%v", err)
	}
	if h := s.Def.Hooks.BeforeUpdate; h != nil {
		if err := h(ctx, existing, &merged); err != nil {
			return nil, err
		}
	}

	P(existing).Detach()
	P(&merged).Detach()
	before, err := toM(existing)
	if err != nil {
		return nil, utils.Internal(err, "failed to prepare update")
	}
	after, err := toM(&merged)
	if err != nil {
		return nil, utils.Internal(err, "failed to prepare update")
	}
	set, unset := changes(before, after)
	if len(set) == 0 && len(unset) == 0 {
		return &merged, nil
	}
	now := s.Now()
	P(&merged).Stamp(now)
	set["updatedAt"] = now
	if err := s.Repo.UpdateIf(ctx, id, s.guard(before), set, unset); err != nil {
		return nil, err
	}
	return &merged, nil
}

// guard pins the stored values of the definition's pinned fields.
func (s *DefaultResourceService[T, P]) guard(before bson.M) bson.M {
	guard := bson.M{}
	for _, f := range s.Def.Pinned {
		if v, ok := before[f]; ok {
			guard[f] = v
		} else {
			guard[f] = bson.M{"$exists": false}
		}
	}
	return guard
}

func toM(doc any) (bson.M, error) {
	data, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// changes diffs two stored forms into a $set and an $unset. Identity and
// timestamps never take part.
func changes(before, after bson.M) (bson.M, []string) {
	set := bson.M{}
	for k, v := range after {
		if skipDiff[k] {
			continue
		}
		if old, ok := before[k]; !ok || !reflect.DeepEqual(old, v) {
			set[k] = v
		}
	}
	var unset []string
	for k := range before {
		if _, ok := after[k]; !ok && !skipDiff[k] {
			unset = append(unset, k)
		}
	}
	sort.Strings(unset)
	return set, unset
}

var skipDiff = map[string]bool{"_id": true, "id": true, "createdAt": true, "updatedAt": true, "refs": true}

func (s *DefaultResourceService[T, P]) Delete(ctx context.Context, id string) (*T, error) {
	existing, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if h := s.Def.Hooks.BeforeDelete; h != nil {
		if err := h(ctx, existing); err != nil {
			return nil, err
		}
	}
	if s.Def.Spec.SoftDelete {
		err = s.Repo.SoftDelete(ctx, id)
	} else {
		err = s.Repo.Delete(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	s.record(ctx, activity.ActionDelete, id)
	return existing, nil
}

// fresh re-reads doc so the response carries populated references.
func (s *DefaultResourceService[T, P]) fresh(ctx context.Context, doc *T) *T {
	got, err := s.Repo.GetByID(ctx, P(doc).GetID())
	if err != nil {
		utils.GetLogger().Warn("re-read after write failed", zap.String("entity", s.Def.Spec.Entity), zap.Error(err))
		return doc
	}
	return got
}

func (s *DefaultResourceService[T, P]) record(ctx context.Context, action, id string) {
	if s.Activity == nil {
		return
	}
	s.Activity.Log(ctx, models.Activity{
		Type:       s.Def.Spec.Entity,
		Action:     action,
		EntityType: s.Def.Spec.Entity,
		EntityID:   id,
	})
}
