package service

import (
	"time"

	"github.com/fsdevblog/groph-rewards/internal/domain"
)

const (
	digitalServiceTTL  = 30 * 24 * time.Hour
	discountCouponTTL  = 7 * 24 * time.Hour
	physicalProductTTL = 15 * 24 * time.Hour
	defaultTTL         = 30 * 24 * time.Hour
)

// ExpiryFor срок действия погашения награды категории category, выданного в момент now.
func ExpiryFor(category domain.RewardCategory, now time.Time) time.Time {
	switch category {
	case domain.RewardCategoryDigitalService:
		return now.Add(digitalServiceTTL)
	case domain.RewardCategoryDiscountCoupon:
		return now.Add(discountCouponTTL)
	case domain.RewardCategoryPhysicalProduct:
		return now.Add(physicalProductTTL)
	default:
		return now.Add(defaultTTL)
	}
}
