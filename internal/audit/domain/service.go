package domain

import "context"

type Service interface {
	// AuditLog records an action. Failures are logged by the
	// implementation and never abort the calling operation.
	AuditLog(ctx context.Context, action, targetType, targetID string, metadata map[string]any)
}
