package usage

import (
	"context"

	"github.com/google/uuid"
)

type userIDCtxKey struct{}

// SetUserIDToContext stores the authenticated user ID for middleware use.
// Transport-level authentication is assumed to have happened upstream.
func SetUserIDToContext(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDCtxKey{}, userID)
}

// GetUserIDFromContext retrieves the authenticated user ID.
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDCtxKey{}).(uuid.UUID)
	return userID, ok
}
