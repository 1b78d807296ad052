package chat

import (
	"encoding/json"
	"fmt"
	"snapsight/app/config"
	"snapsight/app/service/storage"

	"github.com/samber/do"
	bolt "go.etcd.io/bbolt"
)

var historyKey = []byte("chatHistory")

// Service persists the multi-turn conversation as a whole-value snapshot.
// Callers read-modify-write; the single analysis worker is the only writer.
type Service struct {
	db          *bolt.DB
	historySize int
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return &Service{
		db:          do.MustInvoke[*storage.Service](di).DB(),
		historySize: cfg.Chat.HistorySize,
	}, nil
}

func (s *Service) Load() ([]Turn, error) {
	var turns []Turn

	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(storage.BucketChat).Get(historyKey)
		if len(data) == 0 {
			return nil
		}
		return json.Unmarshal(data, &turns)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	return turns, nil
}

// Save persists the conversation after applying the retention bound:
// the leading system turn plus the most recent historySize turns.
func (s *Service) Save(turns []Turn) error {
	turns = s.trim(turns)

	data, err := json.Marshal(turns)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(storage.BucketChat).Put(historyKey, data)
	})
	if err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}

	return nil
}

func (s *Service) Reset() error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(storage.BucketChat).Delete(historyKey)
	})
	if err != nil {
		return fmt.Errorf("failed to reset conversation: %w", err)
	}

	return nil
}

func (s *Service) trim(turns []Turn) []Turn {
	if len(turns) <= s.historySize+1 {
		return turns
	}

	recent := turns[len(turns)-s.historySize:]

	if turns[0].Role == RoleSystem {
		return append([]Turn{turns[0]}, recent...)
	}

	return recent
}
