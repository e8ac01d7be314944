// Package service contains the resource services wrapping backend HTTP
// calls: auth, products, cart, wishlist, orders and clients.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jeanogram/storefront-cli/internal/api"
	"github.com/jeanogram/storefront-cli/internal/convert"
	"github.com/jeanogram/storefront-cli/internal/errs"
	"github.com/jeanogram/storefront-cli/internal/model"
	"github.com/jeanogram/storefront-cli/internal/session"
	"github.com/jeanogram/storefront-cli/internal/token"
)

// AuthService defines registration and login against the backend.
type AuthService interface {
	// Register creates an account. It never auto-authenticates; the caller
	// decides whether to proceed to login. The returned message is the
	// server's confirmation text.
	Register(ctx context.Context, profile model.Registration) (string, error)
	// Login authenticates, decodes the returned credential and persists the
	// session. The decoded user is returned for display.
	Login(ctx context.Context, email, password string) (*model.User, error)
	// Logout clears the session. In-flight authenticated calls may still
	// complete with the old credential; the server decides their fate.
	Logout() error
}

type AuthServiceImpl struct {
	api  *api.Client
	sess *session.Store
	log  *zap.Logger
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(apiClient *api.Client, sess *session.Store, log *zap.Logger) *AuthServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthServiceImpl{api: apiClient, sess: sess, log: log}
}

// tokenFields is the fixed priority order of response field names that may
// carry the credential; first match wins.
var tokenFields = []string{"token", "Token", "accessToken", "access_token"}

// Register validates the profile locally, then posts it. Invalid input never
// issues a request.
func (s *AuthServiceImpl) Register(ctx context.Context, profile model.Registration) (string, error) {
	if err := validateRegistration(profile); err != nil {
		return "", err
	}

	resp, err := s.api.Do(ctx, api.Request{
		Method:    "POST",
		Path:      "/Auth/register",
		Body:      profile,
		Anonymous: true,
	})
	if err != nil {
		return "", err
	}

	msg := convert.Message(resp.Body)
	if msg == "" {
		msg = "registered"
	}
	return msg, nil
}

// Login posts credentials and, on success, extracts the token from the first
// recognized field, decodes its claims and persists the session. An HTTP
// success without a token field is an explicit failure, never a silent one.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*model.User, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: empty email/password", errs.ErrValidation)
	}

	resp, err := s.api.Do(ctx, api.Request{
		Method:    "POST",
		Path:      "/Auth/login",
		Body:      map[string]string{"email": email, "password": password},
		Anonymous: true,
	})
	if err != nil {
		return nil, err
	}

	cred := extractToken(resp.Body)
	if cred == "" {
		return nil, fmt.Errorf("%w: login succeeded but response carried no token field", errs.ErrNoToken)
	}

	claims, err := token.Decode(cred)
	if err != nil {
		return nil, err
	}
	user := token.UserFrom(claims)

	if err := s.sess.Persist(cred, user); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	s.log.Info("logged in",
		zap.String("user", user.Email),
		zap.String("role", string(user.Role)),
	)
	return user, nil
}

// Logout clears the single session slot.
func (s *AuthServiceImpl) Logout() error {
	return s.sess.Clear()
}

func extractToken(body []byte) string {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(body, &m); err != nil {
		return ""
	}
	for _, k := range tokenFields {
		if raw, ok := m[k]; ok {
			var tok string
			if json.Unmarshal(raw, &tok) == nil && tok != "" {
				return tok
			}
		}
	}
	return ""
}

func validateRegistration(p model.Registration) error {
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: name is required", errs.ErrValidation)
	case p.Email == "" || !strings.Contains(p.Email, "@"):
		return fmt.Errorf("%w: valid email is required", errs.ErrValidation)
	case len(p.Password) < 6:
		return fmt.Errorf("%w: password must be at least 6 characters", errs.ErrValidation)
	}
	return nil
}
