package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"flight-forecast-backend/internal/model"
)

const (
	TaskPending  = "pending"
	TaskRunning  = "running"
	TaskDone     = "done"
	TaskFailed   = "failed"
	TaskCanceled = "canceled"

	taskTTL         = 30 * time.Minute
	maxRunningTasks = 3
)

// TaskStatus batch prediction task snapshot
type TaskStatus struct {
	TaskID    string               `json:"task_id"`
	Status    string               `json:"status"`
	Done      int                  `json:"done"`
	Total     int                  `json:"total"`
	Results   []model.BatchItem    `json:"results,omitempty"`
	Failed    []model.BatchFailure `json:"failed,omitempty"`
	Error     string               `json:"error,omitempty"`
	ExpiresAt time.Time            `json:"expires_at"`
}

type batchTask struct {
	id        string
	status    string
	requestID string
	done      int
	total     int
	results   []model.BatchItem
	failed    []model.BatchFailure
	err       string
	cancel    context.CancelFunc
	expiresAt time.Time
}

// taskRegistry in-process async batch tasks; expired tasks are dropped lazily
type taskRegistry struct {
	svc *Service
	now func() time.Time

	mu        sync.Mutex
	tasks     map[string]*batchTask
	byRequest map[string]string
	sem       chan struct{}
}

func newTaskRegistry(svc *Service, now func() time.Time) *taskRegistry {
	return &taskRegistry{
		svc:       svc,
		now:       now,
		tasks:     make(map[string]*batchTask),
		byRequest: make(map[string]string),
		sem:       make(chan struct{}, maxRunningTasks),
	}
}

// CreateBatchTask starts an async batch prediction. A live task with the same
// requestID is returned instead of starting a new one; created reports which.
func (s *Service) CreateBatchTask(items []model.Itinerary, requestID string) (TaskStatus, bool, error) {
	return s.tasks.create(items, requestID)
}

// TaskStatus current state of a task
func (s *Service) TaskStatus(id string) (TaskStatus, error) {
	return s.tasks.get(id)
}

// CancelTask stops a pending or running task; finished tasks are returned as-is.
func (s *Service) CancelTask(id string) (TaskStatus, error) {
	return s.tasks.cancel(id)
}

func (r *taskRegistry) create(items []model.Itinerary, requestID string) (TaskStatus, bool, error) {
	if len(items) == 0 {
		return TaskStatus{}, false, fmt.Errorf("%w: at least one itinerary is required", ErrInvalidInput)
	}
	requestID = strings.TrimSpace(requestID)
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleanupLocked(now)
	if requestID != "" {
		if id, ok := r.byRequest[requestID]; ok {
			if t, ok := r.tasks[id]; ok {
				return t.snapshot(), false, nil
			}
			delete(r.byRequest, requestID)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := &batchTask{
		id:        uuid.NewString(),
		status:    TaskPending,
		requestID: requestID,
		total:     len(items),
		cancel:    cancel,
		expiresAt: now.Add(taskTTL),
	}
	r.tasks[t.id] = t
	if requestID != "" {
		r.byRequest[requestID] = t.id
	}
	go r.run(ctx, t, items)
	return t.snapshot(), true, nil
}

func (r *taskRegistry) get(id string) (TaskStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleanupLocked(r.now())
	t, ok := r.tasks[id]
	if !ok {
		return TaskStatus{}, ErrTaskNotFound
	}
	return t.snapshot(), nil
}

func (r *taskRegistry) cancel(id string) (TaskStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleanupLocked(r.now())
	t, ok := r.tasks[id]
	if !ok {
		return TaskStatus{}, ErrTaskNotFound
	}
	switch t.status {
	case TaskDone, TaskFailed, TaskCanceled:
	default:
		t.cancel()
		t.status = TaskCanceled
		t.err = "task canceled"
		r.releaseLocked(t)
	}
	return t.snapshot(), nil
}

func (r *taskRegistry) run(ctx context.Context, t *batchTask, items []model.Itinerary) {
	defer t.cancel()
	select {
	case r.sem <- struct{}{}:
	case <-ctx.Done():
		return
	}
	defer func() { <-r.sem }()

	r.mu.Lock()
	if t.status != TaskPending {
		r.mu.Unlock()
		return
	}
	t.status = TaskRunning
	r.mu.Unlock()

	m, err := r.svc.holder.Current()
	if err != nil {
		r.finish(t, TaskFailed, err.Error())
		return
	}
	now := r.now()
	for i, it := range items {
		if ctx.Err() != nil {
			return
		}
		item, err := r.svc.batchItem(m, i, it, now)

		r.mu.Lock()
		if t.status == TaskCanceled {
			r.mu.Unlock()
			return
		}
		if err != nil {
			t.failed = append(t.failed, model.BatchFailure{Index: i, Error: err.Error()})
		} else {
			t.results = append(t.results, item)
		}
		t.done = i + 1
		r.mu.Unlock()
	}
	r.finish(t, TaskDone, "")
}

func (r *taskRegistry) finish(t *batchTask, status, errMsg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.status == TaskCanceled {
		return
	}
	t.status = status
	t.err = errMsg
	r.releaseLocked(t)
}

func (r *taskRegistry) releaseLocked(t *batchTask) {
	if t.requestID != "" && r.byRequest[t.requestID] == t.id {
		delete(r.byRequest, t.requestID)
	}
}

func (r *taskRegistry) cleanupLocked(now time.Time) {
	for id, t := range r.tasks {
		if now.After(t.expiresAt) {
			t.cancel()
			delete(r.tasks, id)
		}
	}
	for rid, tid := range r.byRequest {
		if _, ok := r.tasks[tid]; !ok {
			delete(r.byRequest, rid)
		}
	}
}

func (t *batchTask) snapshot() TaskStatus {
	out := TaskStatus{
		TaskID:    t.id,
		Status:    t.status,
		Done:      t.done,
		Total:     t.total,
		Error:     t.err,
		ExpiresAt: t.expiresAt,
	}
	if t.status == TaskDone || t.status == TaskFailed {
		out.Results = append([]model.BatchItem(nil), t.results...)
		out.Failed = append([]model.BatchFailure(nil), t.failed...)
	}
	return out
}
