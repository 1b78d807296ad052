package storage

import (
	"os"
	"path/filepath"
	"snapsight/app/config"
	"time"

	"github.com/samber/do"
	"github.com/samber/oops"
	bolt "go.etcd.io/bbolt"
)

var (
	BucketResponses = []byte("responses")
	BucketChat      = []byte("chat")
)

var _ do.Shutdownable = (*Service)(nil)

// Service owns the single bolt database shared by the response archive
// and the conversation store.
type Service struct {
	db *bolt.DB
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0755); err != nil {
		return nil, oops.Errorf("failed to create storage directory: %w", err)
	}

	db, err := bolt.Open(cfg.Storage.Path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, oops.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(BucketResponses); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(BucketChat)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, oops.Errorf("failed to create buckets: %w", err)
	}

	return &Service{db: db}, nil
}

func (s *Service) DB() *bolt.DB {
	return s.db
}

func (s *Service) Shutdown() error {
	return s.db.Close()
}
