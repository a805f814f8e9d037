package service

import (
	"fmt"

	"github.com/fsdevblog/groph-rewards/pkg/uow"
	"github.com/sirupsen/logrus"
)

type AppServices struct {
	RedemptionService *RedemptionService
	LedgerService     *LedgerService
}

func Factory(unitOfWork uow.UOW, notifier Notifier, l *logrus.Logger) (*AppServices, error) {
	redemptionService, redemptionServiceErr := NewRedemptionService(unitOfWork, notifier, l)
	if redemptionServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", redemptionServiceErr.Error())
	}

	ledgerService, ledgerServiceErr := NewLedgerService(unitOfWork)
	if ledgerServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", ledgerServiceErr.Error())
	}

	return &AppServices{
		RedemptionService: redemptionService,
		LedgerService:     ledgerService,
	}, nil
}
