package application

import "github.com/example/boardgame-tables/internal/proposition"

// CanLeave reports whether viewer may remove targetID from p's roster: the
// player themself, the proposer or an administrator.
func CanLeave(viewer proposition.User, p proposition.Proposition, targetID string) bool {
	if viewer.ID == "" {
		return false
	}
	return viewer.ID == targetID || p.ProposedByUser(viewer.ID) || viewer.IsAdmin
}

// CanManage reports whether viewer may edit or delete p.
func CanManage(viewer proposition.User, p proposition.Proposition) bool {
	if viewer.ID == "" {
		return false
	}
	return p.ProposedByUser(viewer.ID) || viewer.IsAdmin
}

// CanManageLocation reports whether viewer may edit or delete location.
// System locations belong to administrators.
func CanManageLocation(viewer proposition.User, location proposition.Location) bool {
	if viewer.ID == "" {
		return false
	}
	if viewer.IsAdmin {
		return true
	}
	return !location.IsSystem() && location.OwnerID == viewer.ID
}

// CanChooseLocation reports whether viewer may pick a location other than the
// default one.
func (p Policy) CanChooseLocation(viewer proposition.User) bool {
	return viewer.IsAdmin || p.CanUsersSetLocation
}

// CanChooseType reports whether viewer may pick a non-default classification.
func (p Policy) CanChooseType(viewer proposition.User) bool {
	return viewer.IsAdmin
}
