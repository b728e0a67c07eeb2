package utils

import "context"

type ctxKey string

const adminIDKey ctxKey = "adminID"

// WithAdminID records the acting admin on ctx.
func WithAdminID(ctx context.Context, adminID string) context.Context {
	return context.WithValue(ctx, adminIDKey, adminID)
}

// AdminIDFrom returns the acting admin recorded on ctx, or "".
func AdminIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(adminIDKey).(string)
	return id
}
