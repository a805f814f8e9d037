package middlewares

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fsdevblog/groph-rewards/internal/service/tokens"
	"github.com/gin-gonic/gin"
)

var (
	ErrTokenNotExist  = errors.New("token not exist")
	ErrPartnerOnly    = errors.New("partner role required")
	ErrNotAuthorized  = errors.New("unauthorized")
	errClaimsNotFound = errors.New("claims not found in context")
)

const (
	CurrentUserIDKey     = "currentUserID"
	CurrentUserClaimsKey = "currentUserClaims"
)

// checkAuthorization извлекает токен из заголовка Authorization и проверяет его. Если токен не передан,
// вернется ошибка ErrTokenNotExist.
func checkAuthorization(c *gin.Context, jwtTokenSecret []byte) (*tokens.UserClaims, error) {
	tokenHeader := c.GetHeader("Authorization")
	bearer := "Bearer "

	if !strings.HasPrefix(tokenHeader, bearer) {
		return nil, ErrTokenNotExist
	}

	claims, err := tokens.ValidateUserJWT(tokenHeader[len(bearer):], jwtTokenSecret)
	if err != nil {
		return nil, fmt.Errorf("check authorization: %w", err)
	}
	return claims, nil
}

// AuthRequired проверяет, что запрос авторизован. Записывает в контекст id юзера (CurrentUserIDKey)
// и его claims (CurrentUserClaimsKey).
func AuthRequired(jwtTokenSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := checkAuthorization(c, jwtTokenSecret)
		if err != nil {
			AbortWithError(c, http.StatusUnauthorized, ErrNotAuthorized, gin.ErrorTypePublic)
			if !errors.Is(err, ErrTokenNotExist) {
				_ = c.Error(err).SetType(gin.ErrorTypePrivate)
			}
			return
		}
		c.Set(CurrentUserIDKey, claims.ID)
		c.Set(CurrentUserClaimsKey, claims)
		c.Next()
	}
}

// PartnerRequired пропускает только токены с ролью partner. Ставится после AuthRequired.
func PartnerRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exist := c.Get(CurrentUserClaimsKey)
		claims, ok := value.(*tokens.UserClaims)
		if !exist || !ok {
			AbortWithError(c, http.StatusInternalServerError, errClaimsNotFound, gin.ErrorTypePrivate)
			return
		}
		if !claims.IsPartner() {
			AbortWithError(c, http.StatusForbidden, ErrPartnerOnly, gin.ErrorTypePublic)
			return
		}
		c.Next()
	}
}
