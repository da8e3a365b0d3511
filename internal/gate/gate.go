// Package gate is a small Gate/Policy authorization layer. The Gate is a
// central registry of policies; each policy defines which roles may perform
// which actions on a resource type.
package gate

import (
	"context"
	"errors"

	"github.com/pathsixdesigns/pathsix-crm/internal/models"
)

// Action names a class of operation on a resource.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionManage Action = "manage"
)

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNoPolicyDefined = errors.New("no policy defined for resource")
)

// Policy decides whether a user may perform an action.
type Policy interface {
	Can(ctx context.Context, user *models.User, action Action) bool
}

// RolePolicy allows an action when the user holds any of the listed roles.
// An action absent from the map is denied.
type RolePolicy struct {
	Allowed map[Action][]string
}

func (p RolePolicy) Can(_ context.Context, user *models.User, action Action) bool {
	if user == nil {
		return false
	}
	roles, ok := p.Allowed[action]
	if !ok {
		return false
	}
	for _, role := range roles {
		if user.HasRole(role) {
			return true
		}
	}
	return false
}

// AuthenticatedPolicy allows any signed-in user.
type AuthenticatedPolicy struct{}

func (AuthenticatedPolicy) Can(_ context.Context, user *models.User, _ Action) bool {
	return user != nil
}

// Gate is the central authorization checkpoint.
type Gate struct {
	policies map[string]Policy
}

func New() *Gate {
	return &Gate{policies: make(map[string]Policy)}
}

// Register adds a policy for a resource type (e.g. "users"). Overwrites any
// existing policy for that type.
func (g *Gate) Register(resourceType string, p Policy) {
	g.policies[resourceType] = p
}

// Authorize returns ErrUnauthorized for a nil user or denied action, and
// ErrNoPolicyDefined when the resource has no registered policy.
func (g *Gate) Authorize(ctx context.Context, user *models.User, action Action, resourceType string) error {
	if user == nil {
		return ErrUnauthorized
	}
	p, ok := g.policies[resourceType]
	if !ok {
		return ErrNoPolicyDefined
	}
	if !p.Can(ctx, user, action) {
		return ErrUnauthorized
	}
	return nil
}

// Can is a convenience wrapper returning bool instead of error.
func (g *Gate) Can(ctx context.Context, user *models.User, action Action, resourceType string) bool {
	return g.Authorize(ctx, user, action, resourceType) == nil
}

// Default wires the CRM policies: user administration and registration are
// admin-only, project listing needs admin or editor, everything else needs a
// signed-in user.
func Default() *Gate {
	g := New()
	g.Register("users", RolePolicy{Allowed: map[Action][]string{
		ActionView:   {"admin"},
		ActionCreate: {"admin"},
		ActionUpdate: {"admin"},
		ActionDelete: {"admin"},
		ActionManage: {"admin"},
	}})
	g.Register("projects", RolePolicy{Allowed: map[Action][]string{
		ActionView:   {"admin", "editor"},
		ActionCreate: {"admin", "editor"},
		ActionUpdate: {"admin", "editor"},
		ActionDelete: {"admin", "editor"},
	}})
	g.Register("clients", AuthenticatedPolicy{})
	g.Register("leads", AuthenticatedPolicy{})
	return g
}
