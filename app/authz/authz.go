// Package authz decides whether a principal may perform an action. Every
// guard returns nil when the caller is authorized and an *apperr.Error
// otherwise; callers branch on the error and render it unchanged.
package authz

import (
	"context"

	"quill/app/apperr"
	"quill/app/models"
)

type principalKey struct{}

// WithPrincipal attaches the authenticated caller to ctx.
func WithPrincipal(ctx context.Context, p *models.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the caller attached to ctx, or nil.
func PrincipalFrom(ctx context.Context) *models.Principal {
	p, _ := ctx.Value(principalKey{}).(*models.Principal)
	return p
}

// roleMessages overrides the generic denial message for specific roles.
var roleMessages = map[models.Role]string{
	models.RoleAdmin: "Admin access required",
}

func roleDenied(required models.Role) *apperr.Error {
	if msg, ok := roleMessages[required]; ok {
		return apperr.Forbidden(msg)
	}
	return apperr.Forbidden(string(required) + " access required")
}

// RequireAuth fails when no principal is present.
func RequireAuth(p *models.Principal) error {
	if p == nil {
		return apperr.Unauthorized("Authentication required")
	}
	return nil
}

// RequireRole fails unless p holds required or a role above it.
func RequireRole(p *models.Principal, required models.Role) error {
	if err := RequireAuth(p); err != nil {
		return err
	}
	if !p.Role.Satisfies(required) {
		return roleDenied(required)
	}
	return nil
}

// RequireAdmin admits admins only.
func RequireAdmin(p *models.Principal) error {
	return RequireRole(p, models.RoleAdmin)
}

// RequireAuthor admits authors and admins.
func RequireAuthor(p *models.Principal) error {
	return RequireRole(p, models.RoleAuthor)
}

// RequireOwnershipOrAdmin admits the resource owner and any admin.
func RequireOwnershipOrAdmin(p *models.Principal, ownerID string) error {
	if err := RequireAuth(p); err != nil {
		return err
	}
	if p.ID == ownerID || p.Role == models.RoleAdmin {
		return nil
	}
	return apperr.Forbidden("Not authorized to access this resource")
}

// RequireOwner admits only the resource owner, with a caller-supplied
// denial message.
func RequireOwner(p *models.Principal, ownerID, message string) error {
	if err := RequireAuth(p); err != nil {
		return err
	}
	if p.ID != ownerID {
		return apperr.Forbidden(message)
	}
	return nil
}
