package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/agendafacil/agenda-api/models"
)

var (
	ErrMissingToken     = errors.New("token não fornecido")
	ErrInvalidToken     = errors.New("token inválido ou expirado")
	ErrInsufficientRole = errors.New("acesso negado")
)

// Claims is the verified payload of an access token.
type Claims struct {
	UserID   uint
	Username string
	Role     models.Role
}

// Allowed is the role gate: it admits the claim set when its role belongs
// to the required set, regardless of any other claim field.
func (c Claims) Allowed(roles ...models.Role) error {
	if !c.Role.In(roles...) {
		return ErrInsufficientRole
	}
	return nil
}

// TokenService signs and verifies HS256 access tokens with a fixed TTL.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

func (s *TokenService) Secret() []byte {
	return s.secret
}

// Issue creates a token for the user carrying {userId, username, role}
// and expiring after the configured TTL.
func (s *TokenService) Issue(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"userId":   user.ID,
		"username": user.Username,
		"role":     string(user.Role),
		"exp":      time.Now().Add(s.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks signature and expiry and decodes the claim set. Any
// defect, including an unknown role value, yields ErrInvalidToken.
func (s *TokenService) Verify(raw string) (Claims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	return ClaimsFromMap(mapClaims)
}

// ClaimsFromMap converts raw JWT claims into a typed claim set.
func ClaimsFromMap(mc jwt.MapClaims) (Claims, error) {
	id, ok := mc["userId"].(float64)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	username, _ := mc["username"].(string)
	roleStr, _ := mc["role"].(string)
	role, err := models.ParseRole(roleStr)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	return Claims{UserID: uint(id), Username: username, Role: role}, nil
}
