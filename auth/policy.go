package auth

import (
	"basketball-tournament-api/models"
)

// Authorization predicates. All are pure functions over a principal and a
// resource snapshot taken inside the calling transaction, so a check can
// never observe state newer than the write it guards. A zero-value principal
// fails every predicate.

func IsAdmin(p Principal) bool {
	return p.UserID != "" && p.Role == models.RoleAdmin
}

func IsSelf(p Principal, userID string) bool {
	return p.UserID != "" && p.UserID == userID
}

func IsOwnerOrAdmin(p Principal, ownerID string) bool {
	return IsAdmin(p) || IsSelf(p, ownerID)
}

// IsTeamCaptainOrAdmin grants admins and the captain recorded on the
// registration snapshot.
func IsTeamCaptainOrAdmin(p Principal, reg models.Registration) bool {
	return IsAdmin(p) || IsSelf(p, reg.CaptainID)
}
