// Package policy decides whether an authenticated caller may act on a user
// resource. Decisions depend only on the caller's role and id and on the id
// of the user that owns the target resource.
package policy

import (
	"fmt"

	"user-account-service/internal/domain"
)

type Action string

const (
	ActionReadUser  Action = "read_user"
	ActionListUsers Action = "list_users"
	ActionBanUser   Action = "ban_user"
	ActionUnbanUser Action = "unban_user"
)

// Caller is the identity a verified token resolves to.
type Caller struct {
	ID   string
	Role domain.Role
}

type rule func(c Caller, ownerID string) bool

func adminOnly(c Caller, _ string) bool { return c.Role == domain.RoleAdmin }

func adminOrOwner(c Caller, ownerID string) bool {
	return c.Role == domain.RoleAdmin || (c.ID != "" && c.ID == ownerID)
}

var rules = map[Action]rule{
	ActionReadUser:  adminOrOwner,
	ActionListUsers: adminOnly,
	ActionBanUser:   adminOrOwner,
	ActionUnbanUser: adminOnly,
}

// Authorize returns nil when caller may perform action on the resource owned
// by ownerID, and an error wrapping domain.ErrForbidden otherwise. Unknown
// actions are denied.
func Authorize(c Caller, action Action, ownerID string) error {
	r, ok := rules[action]
	if !ok || !r(c, ownerID) {
		return fmt.Errorf("%w: %s", domain.ErrForbidden, action)
	}
	return nil
}
