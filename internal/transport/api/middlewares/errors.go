package middlewares

import (
	"errors"
	"net/http"

	"github.com/fsdevblog/groph-rewards/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	KindNotFound            = "NotFound"
	KindInactive            = "Inactive"
	KindExpired             = "Expired"
	KindOutOfStock          = "OutOfStock"
	KindInsufficientBalance = "InsufficientBalance"
	KindLimitReached        = "LimitReached"
	KindInvalidState        = "InvalidState"
	KindDeadlineExpired     = "DeadlineExpired"
	KindRedemptionExpired   = "RedemptionExpired"
	KindConflict            = "Conflict"
	KindBadRequest          = "BadRequest"
	KindUnauthorized        = "Unauthorized"
	KindForbidden           = "Forbidden"
	KindInternal            = "Internal"
)

type errorKind struct {
	err    error
	kind   string
	status int
}

// domainErrorKinds порядок важен только для ошибок, оборачивающих сразу несколько sentinel.
var domainErrorKinds = []errorKind{
	{err: domain.ErrRecordNotFound, kind: KindNotFound, status: http.StatusNotFound},
	{err: domain.ErrRewardInactive, kind: KindInactive, status: http.StatusBadRequest},
	{err: domain.ErrRewardExpired, kind: KindExpired, status: http.StatusBadRequest},
	{err: domain.ErrOutOfStock, kind: KindOutOfStock, status: http.StatusBadRequest},
	{err: domain.ErrNotEnoughBalance, kind: KindInsufficientBalance, status: http.StatusBadRequest},
	{err: domain.ErrLimitReached, kind: KindLimitReached, status: http.StatusForbidden},
	{err: domain.ErrInvalidState, kind: KindInvalidState, status: http.StatusBadRequest},
	{err: domain.ErrDeadlineExpired, kind: KindDeadlineExpired, status: http.StatusForbidden},
	{err: domain.ErrRedemptionExpired, kind: KindRedemptionExpired, status: http.StatusBadRequest},
	{err: domain.ErrConflict, kind: KindConflict, status: http.StatusConflict},
	{err: ErrRequestInProgress, kind: KindConflict, status: http.StatusConflict},
}

// ClassifyError возвращает стабильный вид ошибки, HTTP статус и сообщение для клиента. Для неизвестных
// ошибок - KindInternal и 500.
func ClassifyError(err error) (string, int, string) {
	for _, k := range domainErrorKinds {
		if errors.Is(err, k.err) {
			return k.kind, k.status, k.err.Error()
		}
	}
	return KindInternal, http.StatusInternalServerError, statusErrorText(http.StatusInternalServerError)
}

func statusErrorText(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not found"
	case http.StatusUnprocessableEntity:
		return "unprocessable entity"
	case http.StatusConflict:
		return "conflict"
	default:
		return "internal server error"
	}
}

func statusKind(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindBadRequest
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	default:
		return KindInternal
	}
}

// errorPayload формирует тело ответа по первой ошибке контекста. Текст приватных ошибок клиенту не отдается.
func errorPayload(c *gin.Context) gin.H {
	firstErr := c.Errors[0]
	status := c.Writer.Status()

	kind, _, msg := ClassifyError(firstErr.Err)
	if kind == KindInternal {
		kind = statusKind(status)
		msg = statusErrorText(status)
		if firstErr.IsType(gin.ErrorTypePublic) || firstErr.IsType(gin.ErrorTypeBind) {
			msg = firstErr.Error()
		}
	}
	if status >= http.StatusInternalServerError {
		kind = KindInternal
		msg = statusErrorText(status)
	}
	return gin.H{"kind": kind, "error": msg}
}

// Errors отдает первую ошибку контекста в виде {"kind": ..., "error": ...}.
func Errors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// тело уже отдано обработчиком.
		if len(c.Errors) == 0 || c.Writer.Size() > 0 {
			return
		}

		c.JSON(c.Writer.Status(), errorPayload(c))
		c.Abort()
	}
}

// AbortWithError в отличие от gin.Context.AbortWithError не отправляет заголовки сразу, поэтому тело ошибки
// и заголовки (Content-Type, Retry-After) выставляет Errors.
func AbortWithError(c *gin.Context, status int, err error, errType gin.ErrorType) {
	c.Status(status)
	_ = c.Error(err).SetType(errType)
	c.Abort()
}
