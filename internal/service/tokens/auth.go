package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleUser    = "user"
	RolePartner = "partner"
)

var (
	ErrTokenExpired  = errors.New("token expired")
	ErrInvalidClaims = errors.New("invalid claims")
)

// UserClaims токен выпускается внешним сервисом авторизации, здесь он только проверяется.
// Пустая роль трактуется как RoleUser.
type UserClaims struct {
	jwt.RegisteredClaims
	ID   int64
	Role string `json:",omitempty"`
}

func (u *UserClaims) IsPartner() bool {
	return u.Role == RolePartner
}

// GenerateUserJWT подписывает токен с теми же claims, что выдает сервис авторизации.
// Используется в тестах и локальной отладке.
func GenerateUserJWT(id int64, role string, expire time.Duration, key []byte) (string, error) {
	userClaims := UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expire)),
		},
		ID:   id,
		Role: role,
	}
	token, err := generateJWT(userClaims, key)
	if err != nil {
		return "", fmt.Errorf("generating user jwt token: %s", err.Error())
	}
	return token, nil
}

func ValidateUserJWT(tokenString string, key []byte) (*UserClaims, error) {
	token, err := validateJWT(tokenString, new(UserClaims), key)
	if err != nil {
		return nil, fmt.Errorf("validating user jwt token: %w", err)
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || claims.ID <= 0 {
		return nil, ErrInvalidClaims
	}
	if claims.Role == "" {
		claims.Role = RoleUser
	}
	return claims, nil
}

func generateJWT(claims jwt.Claims, key []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("generating jwt token: %s", err.Error())
	}

	return tokenString, nil
}

func validateJWT(tokenString string, claims jwt.Claims, key []byte) (*jwt.Token, error) {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{"HS256"}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("parsing jwt token: %w", err)
	}

	return token, nil
}
