package orchestrator

import (
	"context"

	"github.com/shaiso/maskctl/internal/domain"
)

// JobCatalog — операции с masking jobs, нужные Provisioner.
type JobCatalog interface {
	ListMaskingJobs(ctx context.Context, sess domain.Session) ([]domain.Job, error)
	CreateMaskingJob(ctx context.Context, sess domain.Session, spec domain.JobSpec) (*domain.Job, error)
}

// Engine — операции masking engine, которые использует Orchestrator.
// Реализуется *masking.Client.
type Engine interface {
	JobCatalog

	ListRulesets(ctx context.Context, sess domain.Session) ([]domain.Ruleset, error)
	ListProfileJobs(ctx context.Context, sess domain.Session) ([]domain.Job, error)
	GetMaskingJob(ctx context.Context, sess domain.Session, id int) (*domain.Job, error)

	CreateExecution(ctx context.Context, sess domain.Session, jobID int) (*domain.Execution, error)
	GetExecution(ctx context.Context, sess domain.Session, id int) (*domain.Execution, error)

	RefreshRuleset(ctx context.Context, sess domain.Session, rulesetID int) (int, error)
	GetAsyncTask(ctx context.Context, sess domain.Session, id int) (*domain.AsyncTask, error)
}
