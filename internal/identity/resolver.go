package identity

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/indrajit912/hermes/internal/secrets"
	userdomain "github.com/indrajit912/hermes/internal/user/domain"
	"gorm.io/gorm"
)

// Kind classifies the acting identity behind a request.
type Kind string

const (
	// TrustedService is a caller presenting the static service key.
	TrustedService Kind = "trusted_service"
	// ApprovedUser is a specific user with a valid, approved personal key.
	ApprovedUser Kind = "approved_user"
	// PendingUser presented a valid key that has not been approved yet.
	PendingUser Kind = "pending_user"
	// Unauthenticated matched nothing.
	Unauthenticated Kind = "unauthenticated"
)

type Identity struct {
	Kind Kind
	User *userdomain.User
}

// Resolver maps request credentials to an identity by decrypting each
// candidate's stored key and comparing against the presented token.
//
// This is a linear scan per request, acceptable at small scale only; an
// index over a keyed hash of the token would avoid the per-row decrypt while
// keeping the same exact-match contract.
type Resolver struct {
	db        *gorm.DB
	users     userdomain.Repository
	cipher    *secrets.Cipher
	staticKey string
}

func NewResolver(db *gorm.DB, users userdomain.Repository, cipher *secrets.Cipher, staticKey string) *Resolver {
	return &Resolver{
		db:        db,
		users:     users,
		cipher:    cipher,
		staticKey: staticKey,
	}
}

// MatchesStaticKey reports whether the presented value is the trusted-service
// key. Constant-time so the comparison leaks nothing about the secret.
func (r *Resolver) MatchesStaticKey(presented string) bool {
	if r.staticKey == "" || presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(r.staticKey)) == 1
}

// ResolveUser scans all users for a key match, so a pending user resolves to
// PendingUser rather than a bare auth failure. A candidate whose stored key
// does not decrypt (written under another rotation epoch) is skipped rather
// than aborting the scan.
func (r *Resolver) ResolveUser(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{Kind: Unauthenticated}, nil
	}

	users, err := r.users.FindAll(ctx, r.db)
	if err != nil {
		return Identity{}, err
	}
	return r.match(users, token)
}

// ResolveApprovedUser scans approved users only.
func (r *Resolver) ResolveApprovedUser(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{Kind: Unauthenticated}, nil
	}

	users, err := r.users.FindApproved(ctx, r.db)
	if err != nil {
		return Identity{}, err
	}
	return r.match(users, token)
}

func (r *Resolver) match(users []userdomain.User, token string) (Identity, error) {
	for i := range users {
		user := &users[i]

		candidates := make([]string, 0, 2)
		if key, err := user.APIKey(r.cipher); err == nil && key != "" {
			candidates = append(candidates, key)
		} else if err != nil && !errors.Is(err, secrets.ErrDecrypt) {
			return Identity{}, err
		}
		if key, err := user.PendingAPIKey(r.cipher); err == nil && key != "" {
			candidates = append(candidates, key)
		} else if err != nil && !errors.Is(err, secrets.ErrDecrypt) {
			return Identity{}, err
		}

		for _, key := range candidates {
			if subtle.ConstantTimeCompare([]byte(key), []byte(token)) == 1 {
				if user.APIKeyApproved {
					return Identity{Kind: ApprovedUser, User: user}, nil
				}
				return Identity{Kind: PendingUser, User: user}, nil
			}
		}
	}
	return Identity{Kind: Unauthenticated}, nil
}
