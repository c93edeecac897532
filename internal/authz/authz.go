// Package authz validates bearer tokens and resolves them to a Permission
// (spec.md §4.2).
package authz

import (
	"context"
	"errors"
	"regexp"

	"github.com/wtsi-npg/npg_porch_go/internal/models"
	"github.com/wtsi-npg/npg_porch_go/internal/porcherr"
	"github.com/wtsi-npg/npg_porch_go/internal/storage"
)

const tokenLength = 32

var tokenPattern = regexp.MustCompile(`\A[0-9A-Fa-f]+\z`)

// Store is the subset of storage.DB the validator needs. Defined here
// rather than imported directly so tests can substitute a fake.
type Store interface {
	GetTokenByValue(ctx context.Context, value string) (models.Token, error)
}

// Validator resolves bearer tokens to Permission values.
type Validator struct {
	store Store
}

func NewValidator(store Store) Validator {
	return Validator{store: store}
}

// TokenToPermission implements spec.md §4.2's contract exactly, including
// its literal error messages (grounded in
// original_source/src/npg_porch/db/auth.py's Validator.token2permission).
func (v Validator) TokenToPermission(ctx context.Context, bearer string) (models.Permission, error) {
	if len(bearer) != tokenLength {
		return models.Permission{}, porcherr.New(porcherr.KindBadTokenFormat, "The token should be 32 chars long")
	}

	if !tokenPattern.MatchString(bearer) {
		return models.Permission{}, porcherr.New(porcherr.KindBadTokenFormat, "Token failed character validation")
	}

	token, err := v.store.GetTokenByValue(ctx, bearer)
	if err != nil {
		if errors.Is(err, storage.ErrEntityNotFound) {
			return models.Permission{}, porcherr.New(porcherr.KindUnknownToken, "An unknown token is used")
		}
		return models.Permission{}, porcherr.Wrap(porcherr.KindInternal, "looking up token", err)
	}

	if token.Revoked() {
		return models.Permission{}, porcherr.New(porcherr.KindRevokedToken, "A revoked token is used")
	}

	if token.Pipeline == nil {
		return models.NewPermission(models.RolePowerUser, token.ID, nil)
	}

	return models.NewPermission(models.RoleRegularUser, token.ID, token.Pipeline)
}
