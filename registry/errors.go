package registry

import "errors"

var (
	ErrNotOwner      = errors.New("caller is not the registry owner")
	ErrOwnerUnset    = errors.New("registry owner must not be the zero address")
	ErrOwnerMismatch = errors.New("stored registry owner does not match the configured one")

	ErrAlreadyMinter = errors.New("account is already a minter")
	ErrNotMinter     = errors.New("account is not a minter")
	ErrAlreadyGuard  = errors.New("account is already a guard")
	ErrNotGuard      = errors.New("account is not a guard")
)
