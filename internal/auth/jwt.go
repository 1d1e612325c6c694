package auth

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
)

// Roles carried in token claims.
const (
	RoleUser        = "user"
	RoleDonor       = "donor"
	RoleDeliveryBoy = "deliveryboy"
	RoleModerator   = "moderator"
)

// Cookie names, one per role.
const (
	UserCookie        = "user_jwt"
	DonorCookie       = "donor_jwt"
	DeliveryBoyCookie = "deliveryboy_jwt"
	ModeratorCookie   = "moderator_jwt"
)

// CookieForRole returns the cookie name carrying the given role's token.
func CookieForRole(role string) string {
	switch role {
	case RoleDonor:
		return DonorCookie
	case RoleDeliveryBoy:
		return DeliveryBoyCookie
	case RoleModerator:
		return ModeratorCookie
	default:
		return UserCookie
	}
}

// Claims represents the JWT claims
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.StandardClaims
}

// Manager signs and verifies role tokens
type Manager struct {
	secret []byte
	expiry time.Duration
}

// NewManager creates a token manager
func NewManager(secret string, expiry time.Duration) *Manager {
	return &Manager{secret: []byte(secret), expiry: expiry}
}

// GenerateToken generates a signed JWT for the given identity and role
func (m *Manager) GenerateToken(username, role string) (string, error) {
	claims := &Claims{
		Username: username,
		Role:     role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(m.expiry).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}
	return signed, nil
}

// ParseToken verifies a token string and returns its claims
func (m *Manager) ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Expiry returns the configured token lifetime
func (m *Manager) Expiry() time.Duration {
	return m.expiry
}
