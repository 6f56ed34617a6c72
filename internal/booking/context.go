package booking

import "context"

type contextKey string

const (
	idempotencyKey contextKey = "idempotencyKey"
	sessionIDKey   contextKey = "bookingSessionID"
)

func NewContextWithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKey, key)
}

func IdempotencyKeyFromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(idempotencyKey).(string)

	return key, ok && key != ""
}

func NewContextWithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)

	return id, ok && id != ""
}
