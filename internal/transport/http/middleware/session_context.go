package middleware

import "context"

type ctxKey string

const ctxAccountID ctxKey = "account_id"

func WithAccountID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, ctxAccountID, accountID)
}

func AccountIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxAccountID).(string)
	return v, ok && v != ""
}
