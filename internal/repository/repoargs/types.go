package repoargs

type RepositoryName string

const (
	UserRepoName        RepositoryName = "user"
	RewardRepoName      RepositoryName = "reward"
	RedemptionRepoName  RepositoryName = "redemption"
	LedgerEntryRepoName RepositoryName = "ledger_entry"
)
