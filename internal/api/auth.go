package api

import (
	"context"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/wtsi-npg/npg_porch_go/internal/models"
)

// We use a custom context key type to keep the permission value from
// colliding with any other package's context keys.
type contextKey string

var contextPermission = contextKey("permission")

// authMiddleware resolves every request's bearer token to a Permission
// before its operation handler runs (spec.md §4.2, §6: every endpoint in
// this gateway requires a valid token). Unlike the teacher's namespace/kind
// context values, authz failures here already carry a typed porcherr.Kind,
// so the middleware defers to statusAndMessage for the response instead of
// hard-coding a status itself.
func authMiddleware(apictx *APIContext) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		bearer := strings.TrimPrefix(ctx.Header("Authorization"), "Bearer ")

		permission, err := apictx.authz.TokenToPermission(ctx.Context(), bearer)
		if err != nil {
			status, message := statusAndMessage(err)
			_ = huma.WriteErr(apictx.humaAPI, ctx, status, message)
			return
		}

		next(huma.WithValue(ctx, contextPermission, permission))
	}
}

func permissionFrom(ctx context.Context) models.Permission {
	permission, _ := ctx.Value(contextPermission).(models.Permission)
	return permission
}
