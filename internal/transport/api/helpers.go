package api

import (
	"net/http"

	"github.com/fsdevblog/groph-rewards/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
)

// getUserIDFromContext берет из контекста gin ID текущего юзера. ID устанавливается в
// middlewares.AuthRequired. В случае, если значения в контексте нет или ошибка утверждения типа -
// вернется 0.
func getUserIDFromContext(c *gin.Context) int64 {
	userIDValue, exist := c.Get(middlewares.CurrentUserIDKey)
	if !exist {
		return 0
	}
	userID, ok := userIDValue.(int64)
	if !ok {
		return 0
	}
	return userID
}

// abortWithServiceError прерывает запрос со статусом, соответствующим ошибке сервиса. Неизвестные ошибки
// уходят клиенту как 500 без подробностей.
func abortWithServiceError(c *gin.Context, err error) {
	_, status, _ := middlewares.ClassifyError(err)
	if status == http.StatusConflict {
		c.Header("Retry-After", "1")
	}
	errType := gin.ErrorTypePublic
	if status >= http.StatusInternalServerError {
		errType = gin.ErrorTypePrivate
	}
	middlewares.AbortWithError(c, status, err, errType)
}
