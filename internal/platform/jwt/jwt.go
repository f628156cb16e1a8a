package jwt

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Kind string

const (
	KindAdmin   Kind = "admin"
	KindCliente Kind = "cliente"
)

var (
	ErrMalformedToken   = errors.New("malformed token")
	ErrExpiredToken     = errors.New("token expired")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrInvalidToken     = errors.New("invalid token")
)

const DefaultTTL = 7 * 24 * time.Hour

// Millisecond iat lets a logout revoke tokens issued earlier in the same second.
func init() {
	jwt.TimePrecision = time.Millisecond
}

type Claims struct {
	Kind Kind   `json:"kind"`
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// SubjectID returns the numeric identity carried in the subject claim.
func (c *Claims) SubjectID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

type Manager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(secret, issuer string, ttl time.Duration) *Manager {
	if issuer == "" {
		issuer = "storefront"
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue signs a token for the given identity. Role is empty for customers.
func (m *Manager) Issue(subjectID int64, kind Kind, role string) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.ttl)
	claims := Claims{
		Kind: kind,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(subjectID, 10),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (m *Manager) Verify(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Kind != KindAdmin && claims.Kind != KindCliente {
		return nil, ErrInvalidToken
	}
	if _, err := claims.SubjectID(); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformedToken
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSignature
	default:
		return errors.Join(ErrInvalidToken, err)
	}
}
