package utils

import (
	"context"
)

type contextKey string

const (
	HolderIDKey  contextKey = "holder_id"
	RequestIDKey contextKey = "request_id"
)

// SetHolderContext stores the opaque holder identity supplied by the
// identity provider.
func SetHolderContext(ctx context.Context, holderID string) context.Context {
	return context.WithValue(ctx, HolderIDKey, holderID)
}

func GetHolderFromContext(ctx context.Context) (string, bool) {
	holderVal := ctx.Value(HolderIDKey)
	if holderVal == nil {
		return "", false
	}

	holderID, ok := holderVal.(string)
	if !ok || holderID == "" {
		return "", false
	}

	return holderID, true
}
