package service

import (
	"testing"
	"time"

	"github.com/fsdevblog/groph-rewards/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestExpiryFor(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	cases := []struct {
		category domain.RewardCategory
		want     time.Time
	}{
		{category: domain.RewardCategoryDigitalService, want: now.Add(30 * day)},
		{category: domain.RewardCategoryDiscountCoupon, want: now.Add(7 * day)},
		{category: domain.RewardCategoryPhysicalProduct, want: now.Add(15 * day)},
		{category: domain.RewardCategory("merch"), want: now.Add(30 * day)},
		{category: "", want: now.Add(30 * day)},
	}
	for _, tc := range cases {
		t.Run(string(tc.category), func(t *testing.T) {
			assert.Equal(t, tc.want, ExpiryFor(tc.category, now))
		})
	}
}
