// Package token generates and validates the JWTs that kelpd uses to
// authenticate API clients.
package token

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dekarrin/kelp/server/dao"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "kelpd"

// Generate creates a new signed JWT for u. The signing key is derived from
// secret combined with the user's current password hash and last-logout
// time, so changing either immediately invalidates any previously issued
// tokens.
func Generate(secret []byte, u dao.User) (string, error) {
	claims := &jwt.MapClaims{
		"iss":        issuer,
		"exp":        time.Now().Add(time.Hour).Unix(),
		"sub":        u.ID.String(),
		"authorized": true,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)

	tokStr, err := tok.SignedString(signingKey(secret, u))
	if err != nil {
		return "", err
	}
	return tokStr, nil
}

// Get extracts the bearer token from req's Authorization header.
func Get(req *http.Request) (string, error) {
	authHeader := strings.TrimSpace(req.Header.Get("Authorization"))
	if authHeader == "" {
		return "", fmt.Errorf("no authorization header present")
	}

	authParts := strings.SplitN(authHeader, " ", 2)
	if len(authParts) != 2 {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}

	scheme := strings.TrimSpace(strings.ToLower(authParts[0]))
	tok := strings.TrimSpace(authParts[1])

	if scheme != "bearer" {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}

	return tok, nil
}

// Validate parses and verifies tok, looking up the subject user in db to
// recompute the signing key. It returns the looked-up user on success.
func Validate(ctx context.Context, tok string, secret []byte, db dao.UserRepository) (dao.User, error) {
	var user dao.User

	_, err := jwt.Parse(tok, func(t *jwt.Token) (interface{}, error) {
		subj, err := t.Claims.GetSubject()
		if err != nil {
			return nil, fmt.Errorf("cannot get subject: %w", err)
		}

		id, err := uuid.Parse(subj)
		if err != nil {
			return nil, fmt.Errorf("cannot parse subject UUID: %w", err)
		}

		user, err = db.GetByID(ctx, id)
		if err != nil {
			if err == dao.ErrNotFound {
				return nil, fmt.Errorf("subject does not exist")
			}
			return nil, fmt.Errorf("subject could not be validated")
		}

		return signingKey(secret, user), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}), jwt.WithIssuer(issuer), jwt.WithLeeway(time.Minute))

	if err != nil {
		return dao.User{}, err
	}

	return user, nil
}

func signingKey(secret []byte, u dao.User) []byte {
	var key []byte
	key = append(key, secret...)
	key = append(key, []byte(u.Password)...)
	key = append(key, []byte(fmt.Sprintf("%d", u.LastLogoutTime.Unix()))...)
	return key
}
