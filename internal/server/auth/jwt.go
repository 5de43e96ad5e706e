package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims embeds the registered claims and carries the user id as "id".
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
}

// TokenService issues and verifies HS256 access tokens.
type TokenService struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

func NewTokenService(secret []byte, validity time.Duration) *TokenService {
	if validity <= 0 {
		validity = common.DefaultTokenValidity
	}
	return &TokenService{secret: secret, validity: validity, now: time.Now}
}

// Validity reports the lifetime of tokens produced by Issue.
func (s *TokenService) Validity() time.Duration {
	return s.validity
}

func (s *TokenService) Issue(userID string) (string, error) {
	return GenerateToken(userID, s.secret, s.validity, s.now())
}

// Verify checks signature, algorithm and expiry and returns the user id.
// Expired tokens yield common.ErrTokenExpired, anything else
// common.ErrInvalidToken.
func (s *TokenService) Verify(tokenString string) (string, error) {
	return GetUserIDFromToken(tokenString, s.secret, s.now)
}

func GenerateToken(userID string, secretKey []byte, validityDuration time.Duration, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func GetUserIDFromToken(tokenString string, secretKey []byte, now func() time.Time) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", errors.Join(common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.UserID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}
