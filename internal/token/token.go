// Package token decodes the claims segment of an opaque bearer credential.
//
// Only the second dot-separated segment is meaningful to the client. No
// signature verification happens here: the decoded claims drive display and
// role gating, never authorization; the server enforces the trust boundary
// on every privileged request.
package token

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jeanogram/storefront-cli/internal/errs"
	"github.com/jeanogram/storefront-cli/internal/model"
)

// Claims is the decoded payload of a credential.
type Claims map[string]any

// Historical claim-URI spellings seen across backend versions, first match wins.
var (
	subjectKeys = []string{
		"http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier",
		"nameid",
		"sub",
	}
	emailKeys = []string{
		"http://schemas.xmlsoap.org/ws/2005/05/identity/claims/emailaddress",
		"email",
	}
	roleKeys = []string{
		"http://schemas.microsoft.com/ws/2008/06/identity/claims/role",
		"role",
	}
	nameKeys = []string{
		"http://schemas.xmlsoap.org/ws/2005/05/identity/claims/name",
		"unique_name",
		"name",
	}
)

// Decode extracts the claims mapping from a credential.
//
// Failure modes are distinguishable: errs.ErrMalformedCredential for fewer
// than two segments, errs.ErrDecode for an invalid base64url payload,
// errs.ErrParse for a payload that is not a JSON object.
func Decode(credential string) (Claims, error) {
	parts := strings.Split(credential, ".")
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: %d segment(s)", errs.ErrMalformedCredential, len(parts))
	}
	payload, err := decodeBase64URL(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDecode, err)
	}
	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrParse, err)
	}
	return claims, nil
}

// decodeBase64URL converts base64url to standard base64 (-→+, _→/, pad to a
// multiple of 4) and decodes it.
func decodeBase64URL(s string) ([]byte, error) {
	s = strings.ReplaceAll(s, "-", "+")
	s = strings.ReplaceAll(s, "_", "/")
	if m := len(s) % 4; m != 0 {
		s += strings.Repeat("=", 4-m)
	}
	return base64.StdEncoding.DecodeString(s)
}

// String returns the claim under the first matching key, or "".
func (c Claims) String(keys ...string) string {
	for _, k := range keys {
		if v, ok := c[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// UserFrom builds the normalized user object from known claim keys, falling
// back through the historical claim-URI spellings.
func UserFrom(claims Claims) *model.User {
	return &model.User{
		ID:    claims.String(subjectKeys...),
		Email: claims.String(emailKeys...),
		Name:  claims.String(nameKeys...),
		Role:  model.NormalizeRole(claims.String(roleKeys...)),
	}
}

// ExpiresAt extracts the exp claim without validating it, for diagnostics
// only. Returns the zero time when the credential carries no usable exp.
func ExpiresAt(credential string) time.Time {
	var claims jwt.RegisteredClaims
	_, _ = jwt.ParseWithClaims(credential, &claims, func(*jwt.Token) (any, error) { return nil, nil },
		jwt.WithoutClaimsValidation(),
	)
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
