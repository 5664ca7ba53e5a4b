package grade

import "github.com/trezcool/gradebook/core"

// RoleChecker decides whether a caller identity may manage grades.
type RoleChecker interface {
	IsAdmin(identity string) bool
}

// AdminSet is a RoleChecker backed by a fixed set of admin identities (emails).
type AdminSet map[string]struct{}

var _ RoleChecker = AdminSet(nil)

func NewAdminSet(identities ...string) AdminSet {
	set := make(AdminSet, len(identities))
	for _, id := range identities {
		if id = core.CleanString(id, true /* lower */); id != "" {
			set[id] = struct{}{}
		}
	}
	return set
}

func (set AdminSet) IsAdmin(identity string) bool {
	_, ok := set[core.CleanString(identity, true /* lower */)]
	return ok
}
