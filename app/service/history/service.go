package history

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"snapsight/app/service/storage"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/do"
	bolt "go.etcd.io/bbolt"
)

const maxRecords = 50

// Service keeps a bounded, most-recent-first archive of analysis outcomes.
// Records are keyed by a monotonic insertion sequence, so append and evict
// happen atomically inside a single write transaction.
type Service struct {
	db *bolt.DB
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		db: do.MustInvoke[*storage.Service](di).DB(),
	}, nil
}

func (s *Service) Append(record Record) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(storage.BucketResponses)

		seq, err := b.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to allocate sequence: %w", err)
		}

		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}

		if err = b.Put(itob(seq), data); err != nil {
			return fmt.Errorf("failed to store record: %w", err)
		}

		var keys [][]byte
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}

		for len(keys) > maxRecords {
			if err = b.Delete(keys[0]); err != nil {
				return fmt.Errorf("failed to evict record: %w", err)
			}
			keys = keys[1:]
		}

		return nil
	})
}

func (s *Service) List() ([]Record, error) {
	var result []Record

	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(storage.BucketResponses).Cursor()

		for k, v := c.First(); k != nil; k, v = c.Next() {
			var record Record
			if err := json.Unmarshal(v, &record); err != nil {
				return fmt.Errorf("failed to unmarshal record: %w", err)
			}
			result = append(result, record)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return pie.Reverse(result), nil
}

// Remove deletes the record with the given id. A missing id is a no-op.
func (s *Service) Remove(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(storage.BucketResponses)
		c := b.Cursor()

		for k, v := c.First(); k != nil; k, v = c.Next() {
			var record Record
			if err := json.Unmarshal(v, &record); err != nil {
				return fmt.Errorf("failed to unmarshal record: %w", err)
			}
			if record.ID == id {
				return b.Delete(k)
			}
		}

		return nil
	})
}

func (s *Service) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(storage.BucketResponses); err != nil {
			return fmt.Errorf("failed to drop bucket: %w", err)
		}
		_, err := tx.CreateBucket(storage.BucketResponses)
		return err
	})
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
