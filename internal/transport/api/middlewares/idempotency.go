package middlewares

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	IdempotencyKeyHeader      = "Idempotency-Key"
	IdempotencyReplayedHeader = "Idempotent-Replayed"
	MaxIdempotencyKeyLength   = 64

	idempotencyStoreTimeout = time.Second
)

var (
	ErrRequestInProgress     = errors.New("request with this idempotency key is in progress")
	ErrInvalidIdempotencyKey = errors.New("idempotency key must be 1..64 bytes")
)

// StoredResponse ответ, отданный на первый запрос с ключом идемпотентности.
type StoredResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// bodyRecorder копирует тело ответа, чтобы сохранить его для повторов.
type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b) //nolint:wrapcheck
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s) //nolint:wrapcheck
}

// Idempotency защищает не идемпотентный обработчик от повторов по заголовку Idempotency-Key. Ключ хранится
// в разрезе пользователя, поэтому ставится после AuthRequired. Запросы без заголовка проходят как есть.
//
//   - параллельный дубль получает 409 Conflict;
//   - завершенный запрос (кроме 5xx, 409 и паники) сохраняется и отдается повторно без вызова обработчика;
//   - при ошибке хранилища запрос выполняется без защиты.
func Idempotency(store IdempotencyStore, ttl time.Duration, l *logrus.Logger) gin.HandlerFunc {
	entry := l.WithFields(logrus.Fields{
		"component": "api",
		"module":    "idempotency",
	})
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > MaxIdempotencyKeyLength {
			AbortWithError(c, http.StatusBadRequest, ErrInvalidIdempotencyKey, gin.ErrorTypePublic)
			return
		}

		storeKey := fmt.Sprintf("idem:%d:%s", c.GetInt64(CurrentUserIDKey), key)
		storeCtx, cancel := context.WithTimeout(c, idempotencyStoreTimeout)
		stored, reserved, err := store.Begin(storeCtx, storeKey, ttl)
		cancel()

		switch {
		case err != nil:
			entry.WithError(err).Warn("idempotency store unavailable, executing request unguarded")
			c.Next()
			return
		case stored != nil:
			c.Header(IdempotencyReplayedHeader, "true")
			c.Data(stored.Status, stored.ContentType, stored.Body)
			c.Abort()
			return
		case !reserved:
			c.Header("Retry-After", "1")
			AbortWithError(c, http.StatusConflict, ErrRequestInProgress, gin.ErrorTypePublic)
			return
		}

		release := func() {
			relCtx, relCancel := context.WithTimeout(context.WithoutCancel(c), idempotencyStoreTimeout)
			defer relCancel()
			if relErr := store.Release(relCtx, storeKey); relErr != nil {
				entry.WithError(relErr).Warn("release idempotency key")
			}
		}

		recorder := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder
		finished := false
		// паника обработчика уходит в Recovery, ключ при этом освобождается.
		defer func() {
			if !finished {
				c.Writer = recorder.ResponseWriter
				release()
			}
		}()
		c.Next()
		finished = true
		c.Writer = recorder.ResponseWriter

		status := c.Writer.Status()
		if status >= http.StatusInternalServerError || status == http.StatusConflict {
			release()
			return
		}

		finishCtx, finishCancel := context.WithTimeout(context.WithoutCancel(c), idempotencyStoreTimeout)
		defer finishCancel()

		resp := StoredResponse{
			Status:      status,
			ContentType: c.Writer.Header().Get("Content-Type"),
			Body:        recorder.body.Bytes(),
		}
		// тело ошибки допишет Errors уже после этого middleware, сохраняем его сами.
		if len(c.Errors) > 0 && recorder.body.Len() == 0 {
			body, marshalErr := json.Marshal(errorPayload(c))
			if marshalErr == nil {
				resp.ContentType = "application/json; charset=utf-8"
				resp.Body = body
			}
		}
		if saveErr := store.Save(finishCtx, storeKey, resp, ttl); saveErr != nil {
			entry.WithError(saveErr).Warn("save idempotent response")
		}
	}
}
