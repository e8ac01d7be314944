package gate

import (
	"testing"

	"github.com/jeanogram/storefront-cli/internal/model"
)

func TestEvaluate(t *testing.T) {
	t.Parallel()

	user := &model.User{ID: "u", Role: model.RoleUser}
	admin := &model.User{ID: "a", Role: model.RoleAdmin}

	tests := []struct {
		name    string
		loading bool
		user    *model.User
		allowed []model.Role
		want    Outcome
	}{
		{"loading renders nothing", true, admin, []model.Role{model.RoleAdmin}, Wait},
		{"loading even for guest view", true, nil, []model.Role{model.RoleGuest}, Wait},

		{"guest view, empty session", false, nil, []model.Role{model.RoleGuest}, Render},
		{"guest view, user session", false, user, []model.Role{model.RoleGuest}, RedirectHome},
		{"guest view, admin session", false, admin, []model.Role{model.RoleGuest}, RedirectAdminHome},

		{"protected, empty session", false, nil, []model.Role{model.RoleUser}, RedirectLogin},
		{"protected, matching role", false, user, []model.Role{model.RoleUser}, Render},
		{"admin view, admin session", false, admin, []model.Role{model.RoleAdmin}, Render},
		{"user view, admin session", false, admin, []model.Role{model.RoleUser}, RedirectAdminHome},
		{"admin view, user session", false, user, []model.Role{model.RoleAdmin}, RedirectHome},
		{"multi-role view", false, user, []model.Role{model.RoleAdmin, model.RoleUser}, Render},

		{"empty allowed set, empty session", false, nil, nil, RedirectLogin},
		{"empty allowed set, user session", false, user, nil, RedirectHome},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Evaluate(tc.loading, tc.user, tc.allowed); got != tc.want {
				t.Fatalf("Evaluate=%v, want %v", got, tc.want)
			}
		})
	}
}

func TestOutcomeString(t *testing.T) {
	t.Parallel()

	for o, want := range map[Outcome]string{
		Wait:              "wait",
		Render:            "render",
		RedirectLogin:     "redirect:login",
		RedirectHome:      "redirect:home",
		RedirectAdminHome: "redirect:admin",
		Outcome(99):       "unknown",
	} {
		if got := o.String(); got != want {
			t.Fatalf("String(%d)=%q, want %q", o, got, want)
		}
	}
}
