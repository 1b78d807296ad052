package queue

import (
	"log/slog"

	"github.com/samber/do"
)

const bufferSize = 16

var _ do.Shutdownable = (*Service)(nil)

// Service is the admission queue in front of the single analysis worker.
type Service struct {
	queue chan Task
}

type Task struct {
	Screenshot string
	TabURL     string
}

func New(_ *do.Injector) (*Service, error) {
	return &Service{
		queue: make(chan Task, bufferSize),
	}, nil
}

// TryAdd enqueues a task without blocking. It reports false when the
// queue is full, so callers can reject the request instead of piling up.
func (s *Service) TryAdd(task Task) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	select {
	case s.queue <- task:
		return true
	default:
		slog.Warn("analysis queue is full")
		return false
	}
}

func (s *Service) Channel() <-chan Task {
	return s.queue
}

func (s *Service) Shutdown() error {
	close(s.queue)

	return nil
}
