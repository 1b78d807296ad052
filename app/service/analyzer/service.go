package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"snapsight/app/client/vision"
	"snapsight/app/service/chat"
	"snapsight/app/service/history"
	"snapsight/app/service/queue"
	"snapsight/app/util/dataurl"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samber/do"
)

type Badge string

const (
	BadgeNone    Badge = ""
	BadgeSuccess Badge = "✓"
	BadgeFailure Badge = "!"
)

const unknownURL = "Unknown URL"

// Service is the analysis worker: it drains the task queue one request at
// a time, calls the vision provider and archives every outcome. The busy
// flag is informational, admission control lives in the queue.
type Service struct {
	queueSvc   *queue.Service
	historySvc *history.Service
	chatSvc    *chat.Service
	provider   vision.Provider

	processing atomic.Bool

	mu    sync.RWMutex
	badge Badge
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		queueSvc:   do.MustInvoke[*queue.Service](di),
		historySvc: do.MustInvoke[*history.Service](di),
		chatSvc:    do.MustInvoke[*chat.Service](di),
		provider:   do.MustInvoke[vision.Provider](di),
	}, nil
}

// Submit queues a screenshot for analysis. It returns immediately; the
// outcome shows up in the archive and on the badge.
func (s *Service) Submit(screenshot, tabURL string) error {
	if !s.queueSvc.TryAdd(queue.Task{Screenshot: screenshot, TabURL: tabURL}) {
		return fmt.Errorf("analysis queue is full")
	}

	return nil
}

func (s *Service) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case task, ok := <-s.queueSvc.Channel():
			if !ok {
				return nil
			}

			start := time.Now()
			s.process(ctx, task)

			slog.Info("Processed screenshot",
				"url", task.TabURL,
				"provider", s.provider.Name(),
				"duration", time.Since(start))
		}
	}
}

func (s *Service) Processing() bool {
	return s.processing.Load()
}

func (s *Service) Badge() Badge {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.badge
}

func (s *Service) ClearBadge() {
	s.setBadge(BadgeNone)
}

func (s *Service) ResetChat() error {
	return s.chatSvc.Reset()
}

func (s *Service) process(ctx context.Context, task queue.Task) {
	s.processing.Store(true)
	defer s.processing.Store(false)

	answer, err := s.analyze(ctx, task)
	if err != nil {
		slog.Error("Analysis failed", "url", task.TabURL, "error", err)

		s.record(task, "Error: "+err.Error())
		s.setBadge(BadgeFailure)
		return
	}

	s.record(task, answer)
	s.setBadge(BadgeSuccess)
}

func (s *Service) analyze(ctx context.Context, task queue.Task) (string, error) {
	img, err := dataurl.Parse(task.Screenshot)
	if err != nil {
		return "", fmt.Errorf("failed to decode screenshot: %w", err)
	}

	answer, err := s.provider.Analyze(ctx, img)
	if err != nil {
		return "", fmt.Errorf("provider.Analyze: %w", err)
	}

	return answer, nil
}

func (s *Service) record(task queue.Task, response string) {
	url := task.TabURL
	if url == "" {
		url = unknownURL
	}

	now := time.Now().UnixMilli()

	err := s.historySvc.Append(history.Record{
		ID:         strconv.FormatInt(now, 10),
		Response:   response,
		Screenshot: task.Screenshot,
		Timestamp:  now,
		URL:        url,
	})
	if err != nil {
		slog.Error("Failed to archive analysis", "error", err)
	}
}

func (s *Service) setBadge(badge Badge) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.badge = badge
}
