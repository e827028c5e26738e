package token

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// GrantType is the scheme name returned with every issued pair and
// expected in the Authorization header.
const GrantType = "Bearer"

// Pair is an issued access/refresh token pair.
type Pair struct {
	GrantType            string    `json:"grantType"`
	AccessToken          string    `json:"accessToken"`
	RefreshToken         string    `json:"refreshToken"`
	AccessTokenExpiresAt time.Time `json:"accessTokenExpiresAt"`
}

// Identity is the authenticated principal recovered from an access token.
type Identity struct {
	Subject     string
	Authorities []string
}

// HasAuthority reports whether the identity carries the given role.
func (id *Identity) HasAuthority(role string) bool {
	for _, a := range id.Authorities {
		if a == role {
			return true
		}
	}
	return false
}

// Service issues, validates, refreshes, and revokes token pairs. It is
// safe for concurrent use; all shared state lives in the Store.
type Service struct {
	manager *Manager
	store   *Store
	log     *slog.Logger
}

// NewService wires a Service from its codec, credential store, and logger.
func NewService(manager *Manager, store *Store, log *slog.Logger) *Service {
	return &Service{manager: manager, store: store, log: log}
}

// Issue mints an access/refresh pair for subject and records the refresh
// half under RT:{subject}, superseding any previous session.
func (s *Service) Issue(ctx context.Context, subject string, authorities []string) (*Pair, error) {
	joined := strings.Join(authorities, ",")

	accessToken, accessExpiresAt, err := s.manager.CreateAccess(subject, joined)
	if err != nil {
		return nil, err
	}

	refreshToken, _, err := s.manager.CreateRefresh(subject, joined)
	if err != nil {
		return nil, err
	}

	if err := s.store.SaveRefresh(ctx, subject, refreshToken, s.manager.RefreshTTL()); err != nil {
		return nil, err
	}

	s.log.Info("token pair issued", "subject", subject)

	return &Pair{
		GrantType:            GrantType,
		AccessToken:          accessToken,
		RefreshToken:         refreshToken,
		AccessTokenExpiresAt: accessExpiresAt,
	}, nil
}

// Authenticate parses and verifies an access token and returns the
// identity it asserts. The token must carry an authority claim.
func (s *Service) Authenticate(accessToken string) (*Identity, error) {
	claims, err := s.manager.Parse(accessToken)
	if err != nil {
		return nil, err
	}
	if claims.Authorities == "" {
		return nil, ErrMissingAuthority
	}
	return &Identity{
		Subject:     claims.Subject,
		Authorities: claims.AuthorityList(),
	}, nil
}

// IsValid reports whether tokenStr is usable: not blacklisted, well
// signed, and unexpired. The blacklist lookup runs first as the cheap
// short-circuit; a store failure counts as invalid (fails closed).
func (s *Service) IsValid(ctx context.Context, tokenStr string) bool {
	blacklisted, err := s.store.IsBlacklisted(ctx, tokenStr)
	if err != nil {
		s.log.Warn("blacklist check failed", "error", err)
		return false
	}
	if blacklisted {
		return false
	}

	if _, err := s.manager.Parse(tokenStr); err != nil {
		s.log.Debug("token rejected", "error", err)
		return false
	}
	return true
}

// Refresh exchanges a valid refresh token for a new access token carrying
// the same authority claim. The presented token must exactly equal the
// stored RT:{subject} entry; a superseded or revoked session fails with
// ErrSessionMismatch.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	if !s.IsValid(ctx, refreshToken) {
		return "", time.Time{}, ErrInvalidToken
	}

	claims, err := s.manager.Parse(refreshToken)
	if err != nil {
		return "", time.Time{}, err
	}

	stored, err := s.store.GetRefresh(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", time.Time{}, ErrSessionMismatch
		}
		return "", time.Time{}, err
	}
	if stored != refreshToken {
		return "", time.Time{}, ErrSessionMismatch
	}

	accessToken, expiresAt, err := s.manager.CreateAccess(claims.Subject, claims.Authorities)
	if err != nil {
		return "", time.Time{}, err
	}

	s.log.Info("access token refreshed", "subject", claims.Subject)
	return accessToken, expiresAt, nil
}

// Revoke terminates the session behind accessToken: the refresh entry is
// deleted and the access token blacklisted for its remaining lifetime.
// An already expired token only loses its refresh entry.
func (s *Service) Revoke(ctx context.Context, accessToken string) error {
	claims, err := s.manager.ParseExpired(accessToken)
	if err != nil {
		return err
	}

	if err := s.store.DeleteRefresh(ctx, claims.Subject); err != nil {
		return err
	}

	if claims.ExpiresAt != nil {
		if remaining := time.Until(claims.ExpiresAt.Time); remaining > 0 {
			if err := s.store.Blacklist(ctx, accessToken, remaining); err != nil {
				return err
			}
		}
	}

	s.log.Info("session revoked", "subject", claims.Subject)
	return nil
}
