package masking

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shaiso/maskctl/internal/domain"
)

type rulesetDTO struct {
	DatabaseRulesetID   int    `json:"databaseRulesetId"`
	RulesetName         string `json:"rulesetName"`
	DatabaseConnectorID int    `json:"databaseConnectorId"`
}

func (d rulesetDTO) toDomain() domain.Ruleset {
	return domain.Ruleset{ID: d.DatabaseRulesetID, Name: d.RulesetName, ConnectorID: d.DatabaseConnectorID}
}

type connectorDTO struct {
	DatabaseConnectorID int    `json:"databaseConnectorId"`
	ConnectorName       string `json:"connectorName"`
}

type maskingJobDTO struct {
	MaskingJobID int    `json:"maskingJobId"`
	JobName      string `json:"jobName"`
	RulesetID    int    `json:"rulesetId"`
}

func (d maskingJobDTO) toDomain() domain.Job {
	return domain.Job{ID: d.MaskingJobID, Name: d.JobName, RulesetID: d.RulesetID, Kind: domain.JobKindMasking}
}

type profileJobDTO struct {
	ProfileJobID int    `json:"profileJobId"`
	JobName      string `json:"jobName"`
	RulesetID    int    `json:"rulesetId"`
}

type createRulesetRequest struct {
	RulesetName         string `json:"rulesetName"`
	DatabaseConnectorID int    `json:"databaseConnectorId"`
}

type createMaskingJobRequest struct {
	JobName                string                `json:"jobName"`
	RulesetID              int                   `json:"rulesetId"`
	JobDescription         string                `json:"jobDescription"`
	FeedbackSize           int                   `json:"feedbackSize"`
	OnTheFlyMasking        bool                  `json:"onTheFlyMasking"`
	DatabaseMaskingOptions domain.MaskingOptions `json:"databaseMaskingOptions"`
}

// --- Rulesets ---

// ListRulesets возвращает все database rulesets.
func (c *Client) ListRulesets(ctx context.Context, sess domain.Session) ([]domain.Ruleset, error) {
	items, err := listAll[rulesetDTO](ctx, c, sess, "/database-rulesets")
	if err != nil {
		return nil, fmt.Errorf("list rulesets: %w", err)
	}

	rulesets := make([]domain.Ruleset, len(items))
	for i, item := range items {
		rulesets[i] = item.toDomain()
	}
	return rulesets, nil
}

// CreateRuleset создаёт database ruleset для connector.
func (c *Client) CreateRuleset(ctx context.Context, sess domain.Session, spec domain.RulesetSpec) (*domain.Ruleset, error) {
	req := createRulesetRequest{
		RulesetName:         spec.Name,
		DatabaseConnectorID: spec.ConnectorID,
	}

	var resp rulesetDTO
	if err := c.post(ctx, sess, "/database-rulesets", req, &resp); err != nil {
		return nil, fmt.Errorf("create ruleset %q: %w", spec.Name, err)
	}

	ruleset := resp.toDomain()
	return &ruleset, nil
}

// --- Connectors ---

// ListConnectors возвращает все database connectors.
func (c *Client) ListConnectors(ctx context.Context, sess domain.Session) ([]domain.Connector, error) {
	items, err := listAll[connectorDTO](ctx, c, sess, "/database-connectors")
	if err != nil {
		return nil, fmt.Errorf("list connectors: %w", err)
	}

	connectors := make([]domain.Connector, len(items))
	for i, item := range items {
		connectors[i] = domain.Connector{ID: item.DatabaseConnectorID, Name: item.ConnectorName}
	}
	return connectors, nil
}

// --- Jobs ---

// ListMaskingJobs возвращает все masking jobs.
func (c *Client) ListMaskingJobs(ctx context.Context, sess domain.Session) ([]domain.Job, error) {
	items, err := listAll[maskingJobDTO](ctx, c, sess, "/masking-jobs")
	if err != nil {
		return nil, fmt.Errorf("list masking jobs: %w", err)
	}

	jobs := make([]domain.Job, len(items))
	for i, item := range items {
		jobs[i] = item.toDomain()
	}
	return jobs, nil
}

// ListProfileJobs возвращает все profile jobs.
func (c *Client) ListProfileJobs(ctx context.Context, sess domain.Session) ([]domain.Job, error) {
	items, err := listAll[profileJobDTO](ctx, c, sess, "/profile-jobs")
	if err != nil {
		return nil, fmt.Errorf("list profile jobs: %w", err)
	}

	jobs := make([]domain.Job, len(items))
	for i, item := range items {
		jobs[i] = domain.Job{ID: item.ProfileJobID, Name: item.JobName, RulesetID: item.RulesetID, Kind: domain.JobKindProfile}
	}
	return jobs, nil
}

// GetMaskingJob возвращает masking job по ID.
func (c *Client) GetMaskingJob(ctx context.Context, sess domain.Session, id int) (*domain.Job, error) {
	var resp maskingJobDTO
	if err := c.get(ctx, sess, "/masking-jobs/"+strconv.Itoa(id), &resp); err != nil {
		return nil, fmt.Errorf("get masking job %d: %w", id, err)
	}

	job := resp.toDomain()
	return &job, nil
}

// CreateMaskingJob создаёт masking job. Проверку уникальности имени
// выполняет вызывающий код.
func (c *Client) CreateMaskingJob(ctx context.Context, sess domain.Session, spec domain.JobSpec) (*domain.Job, error) {
	req := createMaskingJobRequest{
		JobName:                spec.Name,
		RulesetID:              spec.RulesetID,
		JobDescription:         spec.Description,
		FeedbackSize:           spec.FeedbackSize,
		OnTheFlyMasking:        spec.OnTheFlyMasking,
		DatabaseMaskingOptions: spec.Options,
	}

	var resp maskingJobDTO
	if err := c.post(ctx, sess, "/masking-jobs", req, &resp); err != nil {
		return nil, fmt.Errorf("create masking job %q: %w", spec.Name, err)
	}

	job := resp.toDomain()
	return &job, nil
}
