package service

import "concordvault/internal/model"

// Operation names a file action subject to the authorization policy.
type Operation int

const (
	OpRename Operation = iota
	OpDelete
	OpDownload
	OpShare
)

// Allowed is the whole authorization policy: a pure decision over
// (operation, ownership, role). Owners may do everything with their
// files. Admins may rename, delete and download any file, but minting a
// share link stays an owner-only privilege. Share redemption never goes
// through here; a valid code is its own credential.
func Allowed(op Operation, isOwner bool, role model.Role) bool {
	if isOwner {
		return true
	}
	switch op {
	case OpRename, OpDelete, OpDownload:
		return role == model.RoleAdmin
	default:
		return false
	}
}
