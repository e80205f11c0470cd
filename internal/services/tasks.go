package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

type TaskStatus string

const (
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

type Task struct {
	ID         string      `json:"task_id"`
	Kind       string      `json:"kind"`
	Status     TaskStatus  `json:"status"`
	Progress   int         `json:"progress"`
	Message    string      `json:"message"`
	Error      string      `json:"error,omitempty"`
	Result     interface{} `json:"result,omitempty"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
}

// TaskTracker keeps state of background operations so HTTP clients can
// poll them. Finished tasks expire after the configured TTL.
type TaskTracker struct {
	cache *gocache.Cache
	mu    sync.Mutex
}

func NewTaskTracker(ttl time.Duration) *TaskTracker {
	return &TaskTracker{
		cache: gocache.New(ttl, 10*time.Minute),
	}
}

func (t *TaskTracker) Start(kind string, message string) *Task {
	t.mu.Lock()
	defer t.mu.Unlock()

	task := &Task{
		ID:        uuid.NewString(),
		Kind:      kind,
		Status:    TaskRunning,
		Message:   message,
		StartedAt: time.Now(),
	}
	t.cache.Set(task.ID, task, gocache.NoExpiration)

	snapshot := *task
	return &snapshot
}

// Get returns a snapshot so callers can read it without holding the lock.
func (t *TaskTracker) Get(id string) (*Task, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	task, found := t.get(id)
	if !found {
		return nil, false
	}

	snapshot := *task
	return &snapshot, true
}

func (t *TaskTracker) get(id string) (*Task, bool) {
	cached, found := t.cache.Get(id)
	if !found {
		return nil, false
	}
	return cached.(*Task), true
}

func (t *TaskTracker) Update(id string, progress int, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if task, found := t.get(id); found {
		task.Progress = progress
		task.Message = message
	}
}

func (t *TaskTracker) Complete(id string, result interface{}) {
	t.finish(id, TaskCompleted, "", result)
}

func (t *TaskTracker) Fail(id string, err error) {
	t.finish(id, TaskFailed, err.Error(), nil)
}

func (t *TaskTracker) finish(id string, status TaskStatus, errMessage string, result interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()

	task, found := t.get(id)
	if !found {
		return
	}

	now := time.Now()
	task.Status = status
	task.Error = errMessage
	task.Result = result
	task.FinishedAt = &now
	if status == TaskCompleted {
		task.Progress = 100
	}

	t.cache.Set(id, task, gocache.DefaultExpiration)
}
