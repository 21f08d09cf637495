package utils

import (
	"context"

	"github.com/mmdatafocus/restaurant_backend/appctx"
)

var (
	ContextKeyToken         = appctx.ContextKeyToken
	ContextKeyStaffId       = appctx.ContextKeyStaffId
	ContextKeyStaffName     = appctx.ContextKeyStaffName
	ContextKeyStaffRole     = appctx.ContextKeyStaffRole
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId
)

func GetTokenFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyToken)
}

func GetStaffIdFromContext(ctx context.Context) (int, bool) {
	return appctx.GetInt(ctx, ContextKeyStaffId)
}

func GetStaffNameFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyStaffName)
}

func GetStaffRoleFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyStaffRole)
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func SetTokenInContext(ctx context.Context, token string) context.Context {
	return appctx.Set(ctx, ContextKeyToken, token)
}

func SetStaffIdInContext(ctx context.Context, staffId int) context.Context {
	return appctx.Set(ctx, ContextKeyStaffId, staffId)
}

func SetStaffNameInContext(ctx context.Context, staffName string) context.Context {
	return appctx.Set(ctx, ContextKeyStaffName, staffName)
}

func SetStaffRoleInContext(ctx context.Context, role string) context.Context {
	return appctx.Set(ctx, ContextKeyStaffRole, role)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}
