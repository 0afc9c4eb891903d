package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shaiso/maskctl/internal/domain"
)

// Параметры, с которыми создаются все masking jobs.
const (
	DefaultFeedbackSize = 100000
	DefaultCommitSize   = 20000
)

// DefaultJobSpec возвращает запрос на создание job с фиксированными параметрами.
func DefaultJobSpec(rulesetID int, name string) domain.JobSpec {
	return domain.JobSpec{
		Name:            name,
		RulesetID:       rulesetID,
		Description:     "",
		FeedbackSize:    DefaultFeedbackSize,
		OnTheFlyMasking: false,
		Options: domain.MaskingOptions{
			BatchUpdate:     true,
			CommitSize:      DefaultCommitSize,
			DropConstraints: true,
			Prescript:       domain.ScriptSpec{},
			Postscript:      domain.ScriptSpec{},
		},
	}
}

// Provisioner создаёт masking jobs, не допуская дубликатов имён.
type Provisioner struct {
	jobs   JobCatalog
	logger *slog.Logger
}

// NewProvisioner создаёт Provisioner.
func NewProvisioner(jobs JobCatalog, logger *slog.Logger) *Provisioner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provisioner{jobs: jobs, logger: logger}
}

// Create создаёт job name для ruleset rulesetID.
//
// Перед созданием читается полный список jobs. Если имя уже занято
// (точное совпадение с учётом регистра), возвращается *ConflictError
// и ни одного изменяющего запроса не отправляется.
func (p *Provisioner) Create(ctx context.Context, sess domain.Session, rulesetID int, name string) (*domain.Job, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: job name is required", ErrInvalidInput)
	}

	existing, err := p.jobs.ListMaskingJobs(ctx, sess)
	if err != nil {
		return nil, err
	}

	for _, job := range existing {
		if job.Name == name {
			return nil, &ConflictError{Name: name, JobID: job.ID}
		}
	}

	job, err := p.jobs.CreateMaskingJob(ctx, sess, DefaultJobSpec(rulesetID, name))
	if err != nil {
		return nil, err
	}

	p.logger.Info("masking job created",
		"job_id", job.ID,
		"job_name", job.Name,
		"ruleset_id", rulesetID,
	)

	return job, nil
}
