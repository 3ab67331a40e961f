// Package auth resolves the caller's credential token to a user identity and
// hosts the authorization collaborator the controllers consult before writes.
package auth

import (
	"encoding/base64"
	"errors"
	"strings"
)

var (
	// ErrMalformedToken is returned when a token cannot be decoded into a
	// two-part username:password credential.
	ErrMalformedToken = errors.New("malformed token")
	// ErrForbidden is returned when the authorizer denies an operation.
	ErrForbidden = errors.New("forbidden")
)

// Credentials is the decoded form of a token: base64 of "username:password".
type Credentials struct {
	Username string
	Password string
}

// DecodeToken decodes a base64 credential token. Both standard and URL-safe
// alphabets are accepted since the token travels in a path segment.
func DecodeToken(token string) (Credentials, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		raw, err = base64.URLEncoding.DecodeString(token)
	}
	if err != nil {
		return Credentials{}, ErrMalformedToken
	}

	username, password, ok := strings.Cut(string(raw), ":")
	if !ok || username == "" {
		return Credentials{}, ErrMalformedToken
	}
	return Credentials{Username: username, Password: password}, nil
}

// EncodeToken is the inverse of DecodeToken; used by tests and tooling.
func EncodeToken(username, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
}
