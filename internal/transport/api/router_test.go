package api

import (
	"testing"
	"time"

	"github.com/fsdevblog/groph-rewards/internal/transport/api/mocks"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChecksLockTimeout(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	baseArgs := RouterArgs{
		RedemptionService: mocks.NewMockRedemptionServicer(mockCtrl),
		LedgerService:     mocks.NewMockLedgerServicer(mockCtrl),
		JWTSecretKey:      []byte("secret"),
	}

	cases := []struct {
		name           string
		lockTimeout    time.Duration
		serviceTimeout time.Duration
		wantErr        bool
	}{
		{name: "default lock timeout", lockTimeout: 2 * time.Second},
		{name: "lock timeout not set", lockTimeout: 0},
		{name: "equal to service timeout", lockTimeout: DefaultServiceTimeout, wantErr: true},
		{name: "longer than service timeout", lockTimeout: 5 * time.Second, wantErr: true},
		{name: "custom service timeout", lockTimeout: 5 * time.Second, serviceTimeout: 10 * time.Second},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			args := baseArgs
			args.LockTimeout = tc.lockTimeout
			args.ServiceTimeout = tc.serviceTimeout

			router, err := New(args)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrLockTimeoutTooLong)
				assert.Nil(t, router)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, router)
		})
	}
}
