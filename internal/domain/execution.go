package domain

import "time"

// Execution — один запуск job.
//
// Это неизменяемый снимок: при каждом опросе статуса engine
// возвращает новый экземпляр.
type Execution struct {
	ID         int        `json:"id"`
	JobID      int        `json:"job_id"`
	Status     Status     `json:"status"`
	StartTime  *time.Time `json:"start_time,omitempty"`
	EndTime    *time.Time `json:"end_time,omitempty"`
	RowsMasked *int64     `json:"rows_masked,omitempty"`
	RowsTotal  *int64     `json:"rows_total,omitempty"`
}

// Snapshot возвращает представление execution для поллера.
func (e *Execution) Snapshot() StatusSnapshot {
	return StatusSnapshot{
		ID:         e.ID,
		Status:     e.Status,
		StartTime:  e.StartTime,
		EndTime:    e.EndTime,
		RowsMasked: e.RowsMasked,
	}
}

// Duration возвращает продолжительность выполнения.
// Возвращает 0, если execution ещё не завершён.
func (e *Execution) Duration() time.Duration {
	if e.StartTime == nil || e.EndTime == nil {
		return 0
	}
	return e.EndTime.Sub(*e.StartTime)
}

// AsyncTask — фоновая операция engine (например, refresh ruleset).
type AsyncTask struct {
	ID        int        `json:"id"`
	Operation string     `json:"operation,omitempty"`
	Reference string     `json:"reference,omitempty"`
	Status    Status     `json:"status"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}

// Snapshot возвращает представление async task для поллера.
func (t *AsyncTask) Snapshot() StatusSnapshot {
	return StatusSnapshot{
		ID:        t.ID,
		Status:    t.Status,
		StartTime: t.StartTime,
		EndTime:   t.EndTime,
	}
}

// StatusSnapshot — общий вид execution и async task для опроса статуса.
type StatusSnapshot struct {
	ID         int        `json:"id"`
	Status     Status     `json:"status"`
	StartTime  *time.Time `json:"start_time,omitempty"`
	EndTime    *time.Time `json:"end_time,omitempty"`
	RowsMasked *int64     `json:"rows_masked,omitempty"`
}

// IsTerminal возвращает true, если снимок в финальном статусе.
func (s StatusSnapshot) IsTerminal() bool {
	return s.Status.IsTerminal()
}
