// Package gate decides whether a requested view may render for the current
// session state. It holds no state of its own and is re-evaluated on every
// session status change.
package gate

import "github.com/salmacher/Rag-project/internal/session"

// Access is the level a view requires.
type Access int

const (
	// Public views render for everyone.
	Public Access = iota
	// ProtectedOnly views require an authenticated session.
	ProtectedOnly
	// PublicOnly views (login, register) are hidden from signed-in users.
	PublicOnly
)

// Decision is what the caller should do with the requested view.
type Decision int

const (
	Render Decision = iota
	// ShowLoading suspends the navigation decision while a verification is
	// in flight.
	ShowLoading
	RedirectLogin
	RedirectHome
)

func Decide(required Access, status session.Status) Decision {
	if required == Public {
		return Render
	}
	if status == session.StatusVerifying {
		return ShowLoading
	}
	switch required {
	case ProtectedOnly:
		if status == session.StatusAuthenticated {
			return Render
		}
		return RedirectLogin
	default: // PublicOnly
		if status == session.StatusAuthenticated {
			return RedirectHome
		}
		return Render
	}
}
