package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"user-account-service/internal/domain"
)

func TestAuthorize(t *testing.T) {
	admin := Caller{ID: "admin-1", Role: domain.RoleAdmin}
	alice := Caller{ID: "alice", Role: domain.RoleUser}

	cases := []struct {
		name    string
		caller  Caller
		action  Action
		owner   string
		allowed bool
	}{
		{"owner reads self", alice, ActionReadUser, "alice", true},
		{"user reads other", alice, ActionReadUser, "bob", false},
		{"admin reads other", admin, ActionReadUser, "bob", true},
		{"user lists", alice, ActionListUsers, "", false},
		{"admin lists", admin, ActionListUsers, "", true},
		{"self ban", alice, ActionBanUser, "alice", true},
		{"user bans other", alice, ActionBanUser, "bob", false},
		{"admin bans other", admin, ActionBanUser, "bob", true},
		{"user unbans self", alice, ActionUnbanUser, "alice", false},
		{"admin unbans", admin, ActionUnbanUser, "bob", true},
		{"empty caller id never owns", Caller{Role: domain.RoleUser}, ActionReadUser, "", false},
		{"unknown action", admin, Action("drop_table"), "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.caller, tc.action, tc.owner)
			if tc.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, domain.ErrForbidden)
			}
		})
	}
}
