package registry

/*
The registry keeps the two authorization sets gating the optimistic
minting state machine: minters (may request and finalize) and guards
(may cancel). Both sets are mutated by the single registry owner only.
Membership changes are never idempotent: adding a present member or
removing an absent one is rejected so that operational mistakes do not
pass silently.
*/

import (
	"database/sql"
	"sync"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	logger "github.com/sirupsen/logrus"
)

var KeyOwner = crypto.Keccak256Hash([]byte("registryOwner"))

type Config struct {
	Owner       ethcommon.Address
	ChannelSize int
}

type Registry struct {
	db  *StateDB
	cfg *Config

	mu sync.Mutex

	membershipChangedCh chan *MembershipChangedEvent
}

// New opens the registry on top of the given statedb. The owner is pinned
// in the kv table on first use; reopening with a different owner fails.
func New(db *StateDB, cfg *Config) (*Registry, error) {
	if cfg.Owner == (ethcommon.Address{}) {
		return nil, ErrOwnerUnset
	}

	stored, err := db.GetKeyedValue(KeyOwner)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	if err == sql.ErrNoRows {
		logger.Infof("no stored registry owner found, pinning %s", cfg.Owner.Hex())
		if err := db.setKeyedValue(KeyOwner, ethcommon.BytesToHash(cfg.Owner.Bytes())); err != nil {
			return nil, err
		}
	} else if ethcommon.BytesToAddress(stored.Bytes()) != cfg.Owner {
		logger.Errorf("stored registry owner is %s, configured %s",
			ethcommon.BytesToAddress(stored.Bytes()).Hex(), cfg.Owner.Hex())
		return nil, ErrOwnerMismatch
	}

	return &Registry{
		db:                  db,
		cfg:                 cfg,
		membershipChangedCh: make(chan *MembershipChangedEvent, cfg.ChannelSize),
	}, nil
}

func (r *Registry) Owner() ethcommon.Address {
	return r.cfg.Owner
}

func (r *Registry) GetMembershipChangedEventChannel() <-chan *MembershipChangedEvent {
	return r.membershipChangedCh
}

func (r *Registry) AddMinter(caller, account ethcommon.Address) error {
	return r.add(caller, account, RoleMinter, ErrAlreadyMinter)
}

func (r *Registry) RemoveMinter(caller, account ethcommon.Address) error {
	return r.remove(caller, account, RoleMinter, ErrNotMinter)
}

func (r *Registry) AddGuard(caller, account ethcommon.Address) error {
	return r.add(caller, account, RoleGuard, ErrAlreadyGuard)
}

func (r *Registry) RemoveGuard(caller, account ethcommon.Address) error {
	return r.remove(caller, account, RoleGuard, ErrNotGuard)
}

// IsMinter fails closed: any lookup error reads as "not a member".
func (r *Registry) IsMinter(account ethcommon.Address) bool {
	ok, err := r.db.hasMember(RoleMinter, account)
	if err != nil {
		logger.Errorf("minter lookup failed: account=%s, err=%v", account.Hex(), err)
		return false
	}
	return ok
}

func (r *Registry) IsGuard(account ethcommon.Address) bool {
	ok, err := r.db.hasMember(RoleGuard, account)
	if err != nil {
		logger.Errorf("guard lookup failed: account=%s, err=%v", account.Hex(), err)
		return false
	}
	return ok
}

func (r *Registry) Minters() ([]ethcommon.Address, error) {
	return r.db.members(RoleMinter)
}

func (r *Registry) Guards() ([]ethcommon.Address, error) {
	return r.db.members(RoleGuard)
}

func (r *Registry) add(caller, account ethcommon.Address, role Role, errPresent error) error {
	if caller != r.cfg.Owner {
		return ErrNotOwner
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ok, err := r.db.hasMember(role, account)
	if err != nil {
		return err
	}
	if ok {
		return errPresent
	}

	now := time.Now().Unix()
	if err := r.db.insertMember(role, account, now); err != nil {
		return err
	}

	logger.Infof("%s added: account=%s", role, account.Hex())
	r.emit(&MembershipChangedEvent{Role: role, Account: account, Added: true, At: now})

	return nil
}

func (r *Registry) remove(caller, account ethcommon.Address, role Role, errAbsent error) error {
	if caller != r.cfg.Owner {
		return ErrNotOwner
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ok, err := r.db.hasMember(role, account)
	if err != nil {
		return err
	}
	if !ok {
		return errAbsent
	}

	if err := r.db.deleteMember(role, account); err != nil {
		return err
	}

	logger.Infof("%s removed: account=%s", role, account.Hex())
	r.emit(&MembershipChangedEvent{Role: role, Account: account, Added: false, At: time.Now().Unix()})

	return nil
}

func (r *Registry) emit(ev *MembershipChangedEvent) {
	select {
	case r.membershipChangedCh <- ev:
	default:
		logger.Debugf("membership event dropped, channel full: role=%s, account=%s", ev.Role, ev.Account.Hex())
	}
}
