package job

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Queue names. Weights are set in NewJobService.
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// Task type names stored in Redis. Asynq routes on these strings.
const (
	TaskLowerThirdHide  = "overlay:lower_third_hide"
	TaskCountdownFinish = "overlay:countdown_finish"
	TaskQuizAutoLock    = "quiz:auto_lock"
)

// LowerThirdHidePayload identifies which show of the lower third to hide.
// A newer show carries a different ShowID, so the task becomes a no-op.
type LowerThirdHidePayload struct {
	ShowID uuid.UUID `json:"show_id"`
}

// CountdownFinishPayload identifies one run of the countdown.
// Pause, reset, add and restart all start a new run.
type CountdownFinishPayload struct {
	RunID uuid.UUID `json:"run_id"`
}

// QuizAutoLockPayload identifies the answering round to lock.
type QuizAutoLockPayload struct {
	SessionID uuid.UUID `json:"session_id"`
	RoundID   uuid.UUID `json:"round_id"`
}

// NewLowerThirdHideTask builds the auto-hide task for a lower third show.
func NewLowerThirdHideTask(showID uuid.UUID) (*asynq.Task, error) {
	return newTask(TaskLowerThirdHide, LowerThirdHidePayload{ShowID: showID})
}

// NewCountdownFinishTask builds the task that marks a countdown run finished.
func NewCountdownFinishTask(runID uuid.UUID) (*asynq.Task, error) {
	return newTask(TaskCountdownFinish, CountdownFinishPayload{RunID: runID})
}

// NewQuizAutoLockTask builds the task that locks answers at the deadline.
func NewQuizAutoLockTask(sessionID, roundID uuid.UUID) (*asynq.Task, error) {
	return newTask(TaskQuizAutoLock, QuizAutoLockPayload{SessionID: sessionID, RoundID: roundID})
}

// newTask serializes payload and applies the options shared by overlay timers:
//   - MaxRetry(3): a failed handler is retried, it re-checks state anyway
//   - Queue(critical)
//   - Timeout(10s)
func newTask(taskType string, payload any) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", taskType, err)
	}

	return asynq.NewTask(
		taskType,
		data,
		asynq.MaxRetry(3),
		asynq.Queue(QueueCritical),
		asynq.Timeout(10*time.Second),
	), nil
}

// DecodePayload unmarshals a task payload into T.
func DecodePayload[T any](task *asynq.Task) (T, error) {
	var p T
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("failed to unmarshal %s payload: %w", task.Type(), err)
	}
	return p, nil
}
