package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/gp-maquinas/maintenance-service/internal/domain"
)

// Decode failure modes. Handlers map ErrTokenSignature to 403 and the other
// two to 401, so a tampered token is distinguishable from a stale one when
// debugging secret rotation.
var (
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenSignature = errors.New("token signature invalid")
)

// Claims is the signed payload of a session token. The token is the source
// of truth for the request's duration; Decode never consults storage.
type Claims struct {
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
	StoreID  string      `json:"store,omitempty"`
	FullName string      `json:"fullName,omitempty"`
	jwt.RegisteredClaims
}

// Identity maps claims to the tagged identity value.
func (c *Claims) Identity() domain.Identity {
	if c.Role == domain.RoleStore {
		return domain.NewStoreIdentity(c.Subject, c.FullName, c.StoreID)
	}
	return domain.NewAdminIdentity(c.Subject, c.FullName)
}

// TokenCodec issues and parses HS256 session tokens. The secret is injected
// once at construction and never read from ambient state.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCodec builds a codec with the given signing secret and TTL.
func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenCodec{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock overrides the time source. Test hook.
func (tc *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	tc.now = now
	return tc
}

// TTL returns the configured validity window.
func (tc *TokenCodec) TTL() time.Duration {
	return tc.ttl
}

// Encode signs a token for the subject. Fails only on programmer error.
func (tc *TokenCodec) Encode(subjectID, username string, role domain.Role, storeID, fullName string) (string, time.Time, error) {
	if subjectID == "" || !role.Valid() {
		return "", time.Time{}, errors.New("subject id and valid role required")
	}
	if role == domain.RoleStore && storeID == "" {
		return "", time.Time{}, errors.New("store role requires a store affiliation")
	}
	if role == domain.RoleAdmin {
		storeID = ""
	}

	now := tc.now()
	expiresAt := now.Add(tc.ttl)
	claims := &Claims{
		Username: username,
		Role:     role,
		StoreID:  storeID,
		FullName: fullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tc.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Decode verifies the signature and the validity window. Expiry uses the
// exact boundary: a token whose expiresAt equals now is already expired, with
// no grace period. An expired token reports ErrTokenExpired even when its
// signature is also invalid.
func (tc *TokenCodec) Decode(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	var claims Claims
	parsed, err := parser.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (interface{}, error) {
		return tc.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			if tc.expiredUnverified(tokenStr) {
				return nil, ErrTokenExpired
			}
			return nil, ErrTokenSignature
		}
		return nil, ErrTokenMalformed
	}
	if !parsed.Valid {
		return nil, ErrTokenSignature
	}
	if claims.ExpiresAt == nil {
		return nil, ErrTokenMalformed
	}
	if !tc.now().Before(claims.ExpiresAt.Time) {
		return nil, ErrTokenExpired
	}
	return &claims, nil
}

// expiredUnverified inspects the expiry of a token that failed signature
// verification, so expiry can take precedence in the reported error.
func (tc *TokenCodec) expiredUnverified(tokenStr string) bool {
	var claims Claims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenStr, &claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !tc.now().Before(claims.ExpiresAt.Time)
}
