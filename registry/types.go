package registry

import ethcommon "github.com/ethereum/go-ethereum/common"

type Role string

const (
	RoleMinter Role = "minter"
	RoleGuard  Role = "guard"
)

// MembershipChangedEvent is published whenever an account is added to or
// removed from one of the two authorization sets.
type MembershipChangedEvent struct {
	Role    Role
	Account ethcommon.Address
	Added   bool
	At      int64 // unix seconds
}
