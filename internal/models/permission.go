package models

import "github.com/wtsi-npg/npg_porch_go/internal/porcherr"

// Role is one of the two Permission variants. A POWER_USER has no pipeline
// scope; a REGULAR_USER has exactly one. See NewPermission for the
// cross-validation invariant that enforces this.
type Role string

const (
	RolePowerUser   Role = "POWER_USER"
	RoleRegularUser Role = "REGULAR_USER"
)

// Permission is the derived (never persisted) authorization context
// produced by authz.TokenToPermission (spec.md §3, §4.2). It is a plain
// struct: a Role tag plus a nullable Pipeline pointer. NewPermission enforces
// the pairing (POWER_USER carries no Pipeline, REGULAR_USER carries exactly
// one); the type itself does not, so a struct literal can build a Permission
// that breaks it, and AuthorizeFor checks the Role and the Pipeline
// separately.
type Permission struct {
	Role        Role
	RequestorID int64
	Pipeline    *Pipeline
}

// NewPermission constructs a Permission, enforcing the cross-validation
// invariant: a POWER_USER must have no attached pipeline, and a
// REGULAR_USER must have exactly one.
func NewPermission(role Role, requestorID int64, pipeline *Pipeline) (Permission, error) {
	switch role {
	case RolePowerUser:
		if pipeline != nil {
			return Permission{}, porcherr.New(porcherr.KindInternal, "power user permission must not carry a pipeline scope")
		}
	case RoleRegularUser:
		if pipeline == nil {
			return Permission{}, porcherr.New(porcherr.KindInternal, "regular user permission must carry exactly one pipeline scope")
		}
	default:
		return Permission{}, porcherr.New(porcherr.KindInternal, "unknown permission role")
	}

	return Permission{Role: role, RequestorID: requestorID, Pipeline: pipeline}, nil
}

// AuthorizeFor succeeds iff the permission is scoped to exactly the given
// pipeline (spec.md §4.2). A POWER_USER can never authorize for a pipeline
// through this path — mutating task operations always require a
// pipeline-scoped REGULAR_USER token.
func (p Permission) AuthorizeFor(pipeline Pipeline) error {
	if p.Role != RoleRegularUser {
		return porcherr.New(porcherr.KindRoleNotAllowed, "token does not carry a regular-user role")
	}

	if p.Pipeline == nil {
		return porcherr.New(porcherr.KindNoBoundPipeline, "token is not bound to any pipeline")
	}

	if p.Pipeline.Name != pipeline.Name {
		return porcherr.New(porcherr.KindPipelineMismatch, "token is bound to a different pipeline")
	}

	return nil
}
