package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jeanogram/storefront-cli/internal/api"
	"github.com/jeanogram/storefront-cli/internal/errs"
	"github.com/jeanogram/storefront-cli/internal/model"
	"github.com/jeanogram/storefront-cli/internal/session"
)

func testCred(t *testing.T, claims map[string]any) string {
	t.Helper()
	b, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshal claims: %v", err)
	}
	return "hdr." + base64.RawURLEncoding.EncodeToString(b) + ".sig"
}

func TestAuth_Register(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Path != "/Auth/register" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "" {
			t.Errorf("registration must be anonymous")
		}
		_, _ = w.Write([]byte(`{"message":"account created"}`))
	}))
	defer srv.Close()

	sess := session.New(t.TempDir(), nil)
	s := NewAuthService(api.New(srv.URL, 0, sess, nil), sess, nil)

	// Invalid input never issues a request.
	for _, p := range []model.Registration{
		{Email: "a@b.c", Password: "secret1"},
		{Name: "A", Email: "not-an-email", Password: "secret1"},
		{Name: "A", Email: "a@b.c", Password: "short"},
	} {
		if _, err := s.Register(context.Background(), p); !errors.Is(err, errs.ErrValidation) {
			t.Fatalf("want ErrValidation for %+v, got %v", p, err)
		}
	}
	if requests != 0 {
		t.Fatalf("invalid input issued %d requests", requests)
	}

	msg, err := s.Register(context.Background(), model.Registration{Name: "A", Email: "a@b.c", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if msg != "account created" {
		t.Fatalf("msg=%q", msg)
	}
	if sess.Current().Active() {
		t.Fatalf("registration must not auto-authenticate")
	}
}

func TestAuth_LoginPersistsAndRehydrates(t *testing.T) {
	cred := testCred(t, map[string]any{
		"sub":   "u-1",
		"email": "a@b.c",
		"http://schemas.microsoft.com/ws/2008/06/identity/claims/role": "admin",
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Auth/login" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"accessToken": cred})
	}))

	dir := t.TempDir()
	sess := session.New(dir, nil)
	s := NewAuthService(api.New(srv.URL, 0, sess, nil), sess, nil)

	u, err := s.Login(context.Background(), "a@b.c", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.Role != model.RoleAdmin || u.ID != "u-1" {
		t.Fatalf("decoded user: %+v", u)
	}
	if sess.Credential() != cred {
		t.Fatalf("credential not persisted")
	}

	// Simulated restart with the backend gone: the role must come back from
	// the persisted record alone.
	srv.Close()
	restarted := session.New(dir, nil)
	restarted.Rehydrate()
	got := restarted.User()
	if got == nil || got.Role != model.RoleAdmin {
		t.Fatalf("rehydrated user: %+v", got)
	}
}

func TestAuth_LoginTokenFieldPriority(t *testing.T) {
	cred := testCred(t, map[string]any{"sub": "u-2", "role": "user"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Both spellings present; the canonical one wins.
		_ = json.NewEncoder(w).Encode(map[string]string{
			"token":       cred,
			"accessToken": "hdr.bogus.sig",
		})
	}))
	defer srv.Close()

	sess := session.New(t.TempDir(), nil)
	s := NewAuthService(api.New(srv.URL, 0, sess, nil), sess, nil)

	if _, err := s.Login(context.Background(), "a@b.c", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if sess.Credential() != cred {
		t.Fatalf("persisted %q, want the token field to win", sess.Credential())
	}
}

func TestAuth_LoginWithoutTokenField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"welcome"}`))
	}))
	defer srv.Close()

	sess := session.New(t.TempDir(), nil)
	s := NewAuthService(api.New(srv.URL, 0, sess, nil), sess, nil)

	if _, err := s.Login(context.Background(), "a@b.c", "pw"); !errors.Is(err, errs.ErrNoToken) {
		t.Fatalf("want ErrNoToken, got %v", err)
	}
	if sess.Current().Active() {
		t.Fatalf("no session may be persisted without a token")
	}
}

func TestAuth_LoginBadCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"bad credentials"}`))
	}))
	defer srv.Close()

	sess := session.New(t.TempDir(), nil)
	s := NewAuthService(api.New(srv.URL, 0, sess, nil), sess, nil)

	if _, err := s.Login(context.Background(), "a@b.c", "wrong"); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}
	if _, err := s.Login(context.Background(), "", ""); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("want ErrValidation on empty input, got %v", err)
	}
}

func TestAuth_Logout(t *testing.T) {
	sess := session.New(t.TempDir(), nil)
	if err := sess.Persist(testCred(t, map[string]any{"sub": "u"}), &model.User{ID: "u"}); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	s := NewAuthService(nil, sess, nil)
	if err := s.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if sess.Current().Active() {
		t.Fatalf("session still active after logout")
	}
}
