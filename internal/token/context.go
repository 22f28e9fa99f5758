package token

import (
	"context"
)

// subjectKey is a context key type for storing the authenticated subject.
type subjectKey struct{}

// WithSubject stores the authenticated subject identifier in the context.
// Called by the authentication middleware after successful token validation.
func WithSubject(ctx context.Context, subjectID string) context.Context {
	return context.WithValue(ctx, subjectKey{}, subjectID)
}

// GetSubject retrieves the authenticated subject identifier from the context.
// Returns ("", false) if no subject was set.
func GetSubject(ctx context.Context) (string, bool) {
	subjectID, ok := ctx.Value(subjectKey{}).(string)
	return subjectID, ok
}
