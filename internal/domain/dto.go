package domain

type RewardCategory string

const (
	RewardCategoryPhysicalProduct RewardCategory = "physical_product"
	RewardCategoryDigitalService  RewardCategory = "digital_service"
	RewardCategoryDiscountCoupon  RewardCategory = "discount_coupon"
)

type RedemptionStatusType string

const (
	RedemptionStatusPending   RedemptionStatusType = "pending"
	RedemptionStatusCompleted RedemptionStatusType = "completed"
	RedemptionStatusCancelled RedemptionStatusType = "cancelled"
)

// IsTerminal сообщает, что из статуса больше нет переходов.
func (s RedemptionStatusType) IsTerminal() bool {
	return s == RedemptionStatusCompleted || s == RedemptionStatusCancelled
}

type TransactionType string

const (
	TransactionTypeRedemptionDebit    TransactionType = "redemption_debit"
	TransactionTypeRefundCredit       TransactionType = "refund_credit"
	TransactionTypeExpiryRefundCredit TransactionType = "expiry_refund_credit"
)

type RelatedEntityType string

const (
	RelatedEntityRedemption RelatedEntityType = "redemption"
)

type NotificationType string

const (
	NotificationRedemptionSuccess   NotificationType = "redemption_success"
	NotificationRedemptionCancelled NotificationType = "redemption_cancelled"
)
