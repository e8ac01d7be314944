// Package gate decides render-vs-redirect for a view from the current
// session and the view's declared allowed roles.
package gate

import "github.com/jeanogram/storefront-cli/internal/model"

// Outcome is the gate decision, re-evaluated on every navigation.
type Outcome int

const (
	// Wait: the session is still loading; render nothing, never flash a redirect.
	Wait Outcome = iota
	// Render: the view may be shown.
	Render
	// RedirectLogin: an empty session hit a protected view.
	RedirectLogin
	// RedirectHome: the landing view for non-admin users.
	RedirectHome
	// RedirectAdminHome: the landing view for admins.
	RedirectAdminHome
)

func (o Outcome) String() string {
	switch o {
	case Wait:
		return "wait"
	case Render:
		return "render"
	case RedirectLogin:
		return "redirect:login"
	case RedirectHome:
		return "redirect:home"
	case RedirectAdminHome:
		return "redirect:admin"
	}
	return "unknown"
}

// landing picks the role-appropriate landing view.
func landing(u *model.User) Outcome {
	if u != nil && u.Role == model.RoleAdmin {
		return RedirectAdminHome
	}
	return RedirectHome
}

// Evaluate applies the gate decision table.
//
// Guest views (allowed contains RoleGuest) render only for empty sessions;
// a populated session is sent to its landing view. Protected views send
// empty sessions to login, wrong-role sessions to their landing view, and
// render otherwise.
func Evaluate(loading bool, user *model.User, allowed []model.Role) Outcome {
	if loading {
		return Wait
	}

	guest := false
	for _, r := range allowed {
		if r == model.RoleGuest {
			guest = true
			break
		}
	}

	if guest {
		if user != nil {
			return landing(user)
		}
		return Render
	}

	if user == nil {
		return RedirectLogin
	}
	for _, r := range allowed {
		if r == user.Role {
			return Render
		}
	}
	return landing(user)
}
