package logging

import (
	"context"

	"github.com/google/uuid"
)

// GetSessionFromCtx returns the boot session id stored in ctx, or "".
func GetSessionFromCtx(ctx context.Context) string {
	if v := ctx.Value(sessionKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func MakeContextWithSession(ctx context.Context, session string) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// MakeContextWithNewSession tags ctx with a fresh random boot session id.
func MakeContextWithNewSession(ctx context.Context) context.Context {
	return MakeContextWithSession(ctx, uuid.New().String())
}
