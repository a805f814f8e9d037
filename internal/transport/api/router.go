package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/fsdevblog/groph-rewards/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	DefaultServiceTimeout = 3 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
)

const (
	RouteGroup       = "/api"
	RedeemRoute      = "/rewards/:id/redeem"
	CancelRoute      = "/user/redemptions/:id/cancel"
	RedemptionsRoute = "/user/redemptions"
	BalanceRoute     = "/user/balance"
	LedgerRoute      = "/user/ledger"
	ReconcileRoute   = "/user/ledger/reconcile"
	CompleteRoute    = "/partner/redemptions/:code/complete"
)

// ErrLockTimeoutTooLong lock_timeout транзакций не меньше таймаута обработчика.
var ErrLockTimeoutTooLong = errors.New("lock timeout must be shorter than service timeout")

type RouterArgs struct {
	Logger            *logrus.Logger
	RedemptionService RedemptionServicer
	LedgerService     LedgerServicer
	JWTSecretKey      []byte
	// IdempotencyStore если nil, заголовок Idempotency-Key игнорируется.
	IdempotencyStore middlewares.IdempotencyStore
	IdempotencyTTL   time.Duration
	// ServiceTimeout таймаут вызова сервиса из обработчика. По умолчанию DefaultServiceTimeout.
	ServiceTimeout time.Duration
	// LockTimeout lock_timeout транзакций, должен быть меньше ServiceTimeout. Ноль не проверяется.
	LockTimeout time.Duration
}

func New(args RouterArgs) (*gin.Engine, error) {
	serviceTimeout := args.ServiceTimeout
	if serviceTimeout <= 0 {
		serviceTimeout = DefaultServiceTimeout
	}
	if args.LockTimeout >= serviceTimeout {
		return nil, fmt.Errorf("new router: %w: %s >= %s", ErrLockTimeoutTooLong, args.LockTimeout, serviceTimeout)
	}

	if err := registerValidators(); err != nil {
		return nil, fmt.Errorf("new router: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Errors())

	redemptionHandler := NewRedemptionHandler(args.RedemptionService, serviceTimeout)
	ledgerHandler := NewLedgerHandler(args.LedgerService, serviceTimeout)

	api := r.Group(RouteGroup)
	api.Use(middlewares.AuthRequired(args.JWTSecretKey))
	// ниже все роуты группы требуют авторизованного пользователя.

	redeemChain := []gin.HandlerFunc{redemptionHandler.Redeem}
	if args.IdempotencyStore != nil {
		ttl := args.IdempotencyTTL
		if ttl <= 0 {
			ttl = DefaultIdempotencyTTL
		}
		logger := args.Logger
		if logger == nil {
			logger = logrus.New()
		}
		redeemChain = append(
			[]gin.HandlerFunc{middlewares.Idempotency(args.IdempotencyStore, ttl, logger)},
			redeemChain...,
		)
	}
	api.POST(RedeemRoute, redeemChain...)
	api.POST(CancelRoute, redemptionHandler.Cancel)
	api.GET(RedemptionsRoute, redemptionHandler.Index)

	api.GET(BalanceRoute, ledgerHandler.Balance)
	api.GET(LedgerRoute, ledgerHandler.Ledger)
	api.GET(ReconcileRoute, ledgerHandler.Reconcile)

	api.POST(CompleteRoute, middlewares.PartnerRequired(), redemptionHandler.Complete)
	return r, nil
}
