package middleware

import "context"

type ctxKey string

const ctxUsername ctxKey = "username"

// UsernameFromContext returns the username seeded by RequireLogin.
func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(ctxUsername).(string)
	return username, ok && username != ""
}
