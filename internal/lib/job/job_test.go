package job

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

func TestTaskPayloadRoundTrip(t *testing.T) {
	showID := uuid.New()

	task, err := NewLowerThirdHideTask(showID)
	if err != nil {
		t.Fatalf("NewLowerThirdHideTask: %v", err)
	}
	if task.Type() != TaskLowerThirdHide {
		t.Fatalf("type = %q", task.Type())
	}

	p, err := DecodePayload[LowerThirdHidePayload](task)
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if p.ShowID != showID {
		t.Fatalf("show id = %s, want %s", p.ShowID, showID)
	}
}

func TestDecodePayloadRejectsGarbage(t *testing.T) {
	task := asynq.NewTask(TaskQuizAutoLock, []byte("{"))
	if _, err := DecodePayload[QuizAutoLockPayload](task); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}

func TestLocalSchedulerRunsHandler(t *testing.T) {
	logger := zerolog.Nop()
	s := NewLocalScheduler(&logger)

	got := make(chan uuid.UUID, 1)
	s.Handle(TaskCountdownFinish, func(ctx context.Context, task *asynq.Task) error {
		p, err := DecodePayload[CountdownFinishPayload](task)
		if err != nil {
			return err
		}
		got <- p.RunID
		return nil
	})

	runID := uuid.New()
	task, _ := NewCountdownFinishTask(runID)
	if err := s.Schedule(context.Background(), task, 10*time.Millisecond); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	select {
	case id := <-got:
		if id != runID {
			t.Fatalf("run id = %s, want %s", id, runID)
		}
	case <-time.After(time.Second):
		t.Fatalf("handler did not run")
	}
}

func TestLocalSchedulerUnknownTask(t *testing.T) {
	logger := zerolog.Nop()
	s := NewLocalScheduler(&logger)

	task, _ := NewQuizAutoLockTask(uuid.New(), uuid.New())
	if err := s.Schedule(context.Background(), task, time.Second); err == nil {
		t.Fatalf("expected error without a registered handler")
	}
}

func TestLocalSchedulerStopCancelsPending(t *testing.T) {
	logger := zerolog.Nop()
	s := NewLocalScheduler(&logger)

	ran := make(chan struct{}, 1)
	s.Handle(TaskLowerThirdHide, func(ctx context.Context, task *asynq.Task) error {
		ran <- struct{}{}
		return nil
	})

	task, _ := NewLowerThirdHideTask(uuid.New())
	if err := s.Schedule(context.Background(), task, 20*time.Millisecond); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if s.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", s.Pending())
	}

	s.Stop()

	select {
	case <-ran:
		t.Fatalf("handler ran after Stop")
	case <-time.After(60 * time.Millisecond):
	}

	if err := s.Schedule(context.Background(), task, time.Millisecond); err == nil {
		t.Fatalf("expected error after Stop")
	}
}
