package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the JWT payload used for both access and refresh tokens.
// Authorities holds a comma-joined role list; it is present on access
// tokens and, so refresh can carry roles forward, on refresh tokens too.
type Claims struct {
	Authorities string `json:"auth,omitempty"`
	jwt.RegisteredClaims
}

// AuthorityList splits the comma-joined authority claim into role strings.
func (c *Claims) AuthorityList() []string {
	if c.Authorities == "" {
		return nil
	}
	return strings.Split(c.Authorities, ",")
}

// Config holds the signing parameters for a Manager. Instances are
// configured once at startup and treated as immutable afterwards.
type Config struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Manager signs and parses HS256 tokens with a shared symmetric secret.
type Manager struct {
	config Config
}

// NewManager validates cfg and returns a Manager. The secret must be
// non-empty and both lifetimes positive, with the refresh lifetime at
// least as long as the access lifetime.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("hs256 requires a signing secret")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.RefreshTTL < cfg.AccessTTL {
		return nil, errors.New("refresh TTL shorter than access TTL")
	}
	return &Manager{config: cfg}, nil
}

// AccessTTL reports the configured access-token lifetime.
func (m *Manager) AccessTTL() time.Duration { return m.config.AccessTTL }

// RefreshTTL reports the configured refresh-token lifetime.
func (m *Manager) RefreshTTL() time.Duration { return m.config.RefreshTTL }

// CreateAccess signs an access token for subject with the given comma-joined
// authorities and returns the token plus its expiry timestamp.
func (m *Manager) CreateAccess(subject, authorities string) (string, time.Time, error) {
	return m.sign(subject, authorities, m.config.AccessTTL)
}

// CreateRefresh signs a refresh token for subject. The authority claim is
// embedded so a later Refresh can mint an access token with the same roles
// without consulting the user directory.
func (m *Manager) CreateRefresh(subject, authorities string) (string, time.Time, error) {
	return m.sign(subject, authorities, m.config.RefreshTTL)
}

func (m *Manager) sign(subject, authorities string, ttl time.Duration) (string, time.Time, error) {
	expiresAt := time.Now().Add(ttl)
	claims := Claims{
		Authorities: authorities,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.config.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse verifies the signature and registered claims of tokenStr and
// returns its claims. Failures are classified into the package sentinels.
func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	))
}

// ParseExpired verifies only the signature of tokenStr, accepting tokens
// past their expiry. Revoke uses it to recover the subject and remaining
// lifetime of an access token that may already have lapsed.
func (m *Manager) ParseExpired(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	))
}

func (m *Manager) parse(tokenStr string, parser *jwt.Parser) (*Claims, error) {
	claims := &Claims{}
	parsed, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return m.config.Secret, nil
	})
	if err != nil {
		return nil, classifyParseError(err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpiredToken, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrUnsupportedToken, err)
	default:
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
}
