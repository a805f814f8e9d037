package pgrepo

import (
	"fmt"

	"github.com/fsdevblog/groph-rewards/internal/repository/repoargs"
	"github.com/fsdevblog/groph-rewards/pkg/uow"
)

// Factories фабрики всех postgres репозиториев по именам, под которыми их ищут сервисы.
func Factories() map[repoargs.RepositoryName]uow.RepositoryFactory {
	return map[repoargs.RepositoryName]uow.RepositoryFactory{
		repoargs.UserRepoName: func(dbtx uow.DBTX) uow.Repository {
			return NewUserRepository(dbtx)
		},
		repoargs.RewardRepoName: func(dbtx uow.DBTX) uow.Repository {
			return NewRewardRepository(dbtx)
		},
		repoargs.RedemptionRepoName: func(dbtx uow.DBTX) uow.Repository {
			return NewRedemptionRepository(dbtx)
		},
		repoargs.LedgerEntryRepoName: func(dbtx uow.DBTX) uow.Repository {
			return NewLedgerRepository(dbtx)
		},
	}
}

// Register регистрирует factories в unit of work.
func Register(u uow.UOW, factories map[repoargs.RepositoryName]uow.RepositoryFactory) error {
	for name, factory := range factories {
		if regErr := u.Register(uow.RepositoryName(name), factory); regErr != nil {
			return fmt.Errorf("register %s repository: %w", name, regErr)
		}
	}
	return nil
}
