package services

import "context"

// PermissionChecker abstracts module permission evaluation for services.
type PermissionChecker interface {
	Check(ctx context.Context, userID uint, route string) (bool, error)
	GetUserModules(ctx context.Context, userID uint) ([]string, error)
}
