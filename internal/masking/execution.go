package masking

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shaiso/maskctl/internal/domain"
)

type executionDTO struct {
	ExecutionID int    `json:"executionId"`
	JobID       int    `json:"jobId"`
	Status      string `json:"status"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	RowsMasked  *int64 `json:"rowsMasked"`
	RowsTotal   *int64 `json:"rowsTotal"`
}

func (d executionDTO) toDomain() domain.Execution {
	return domain.Execution{
		ID:         d.ExecutionID,
		JobID:      d.JobID,
		Status:     domain.ParseStatus(d.Status),
		StartTime:  parseTime(d.StartTime),
		EndTime:    parseTime(d.EndTime),
		RowsMasked: d.RowsMasked,
		RowsTotal:  d.RowsTotal,
	}
}

type asyncTaskDTO struct {
	AsyncTaskID int    `json:"asyncTaskId"`
	Operation   string `json:"operation"`
	Reference   string `json:"reference"`
	Status      string `json:"status"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
}

type createExecutionRequest struct {
	JobID int `json:"jobId"`
}

// CreateExecution запускает job (masking или profile).
func (c *Client) CreateExecution(ctx context.Context, sess domain.Session, jobID int) (*domain.Execution, error) {
	var resp executionDTO
	if err := c.post(ctx, sess, "/executions", createExecutionRequest{JobID: jobID}, &resp); err != nil {
		return nil, fmt.Errorf("execute job %d: %w", jobID, err)
	}

	exec := resp.toDomain()
	if exec.JobID == 0 {
		exec.JobID = jobID
	}
	return &exec, nil
}

// GetExecution возвращает текущий снимок execution.
func (c *Client) GetExecution(ctx context.Context, sess domain.Session, id int) (*domain.Execution, error) {
	var resp executionDTO
	if err := c.get(ctx, sess, "/executions/"+strconv.Itoa(id), &resp); err != nil {
		return nil, fmt.Errorf("get execution %d: %w", id, err)
	}

	exec := resp.toDomain()
	return &exec, nil
}

// RefreshRuleset запускает refresh database ruleset и возвращает ID async task.
func (c *Client) RefreshRuleset(ctx context.Context, sess domain.Session, rulesetID int) (int, error) {
	var resp asyncTaskDTO
	path := "/database-rulesets/" + strconv.Itoa(rulesetID) + "/refresh"
	if err := c.put(ctx, sess, path, struct{}{}, &resp); err != nil {
		return 0, fmt.Errorf("refresh ruleset %d: %w", rulesetID, err)
	}
	return resp.AsyncTaskID, nil
}

// GetAsyncTask возвращает текущий снимок async task.
func (c *Client) GetAsyncTask(ctx context.Context, sess domain.Session, id int) (*domain.AsyncTask, error) {
	var resp asyncTaskDTO
	if err := c.get(ctx, sess, "/async-tasks/"+strconv.Itoa(id), &resp); err != nil {
		return nil, fmt.Errorf("get async task %d: %w", id, err)
	}

	task := domain.AsyncTask{
		ID:        resp.AsyncTaskID,
		Operation: resp.Operation,
		Reference: resp.Reference,
		Status:    domain.ParseStatus(resp.Status),
		StartTime: parseTime(resp.StartTime),
		EndTime:   parseTime(resp.EndTime),
	}
	if task.ID == 0 {
		task.ID = id
	}
	return &task, nil
}
