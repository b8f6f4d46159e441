package boltdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"go.etcd.io/bbolt"

	"github.com/iudanet/rentspace/internal/client/storage"
)

var currentKey = []byte("current")

var _ storage.AuthStorage = (*Storage)(nil)

// SaveSession stores the current session
func (s *Storage) SaveSession(ctx context.Context, session *storage.Session) error {
	return s.put(bucketAuth, session)
}

// GetSession retrieves the current session
func (s *Storage) GetSession(ctx context.Context) (*storage.Session, error) {
	var session storage.Session
	if err := s.get(bucketAuth, &session, storage.ErrAuthNotFound); err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteSession removes the current session (logout)
func (s *Storage) DeleteSession(ctx context.Context) error {
	return s.delete(bucketAuth, storage.ErrAuthNotFound)
}

// SavePending stores a registration waiting for OTP
func (s *Storage) SavePending(ctx context.Context, p *storage.PendingVerification) error {
	return s.put(bucketPending, p)
}

// GetPending retrieves the registration waiting for OTP
func (s *Storage) GetPending(ctx context.Context) (*storage.PendingVerification, error) {
	var p storage.PendingVerification
	if err := s.get(bucketPending, &p, storage.ErrPendingNotFound); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeletePending removes the pending registration.
// Отсутствие записи ошибкой не считается.
func (s *Storage) DeletePending(ctx context.Context) error {
	err := s.delete(bucketPending, storage.ErrPendingNotFound)
	if errors.Is(err, storage.ErrPendingNotFound) {
		return nil
	}
	return err
}

// put сериализует v в JSON и сохраняет под единственным ключом bucket
func (s *Storage) put(bucket []byte, v any) error {
	if v == nil {
		return fmt.Errorf("nothing to save in %s bucket", bucket)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s data: %w", bucket, err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return fmt.Errorf("%s bucket not found", bucket)
		}
		if err := b.Put(currentKey, data); err != nil {
			return fmt.Errorf("failed to save %s data: %w", bucket, err)
		}
		return nil
	})
}

func (s *Storage) get(bucket []byte, v any, notFound error) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return fmt.Errorf("%s bucket not found", bucket)
		}

		data := b.Get(currentKey)
		if data == nil {
			return notFound
		}

		// data живет только внутри транзакции, Unmarshal копирует значения
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("failed to unmarshal %s data: %w", bucket, err)
		}
		return nil
	})
}

func (s *Storage) delete(bucket []byte, notFound error) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return fmt.Errorf("%s bucket not found", bucket)
		}

		if b.Get(currentKey) == nil {
			return notFound
		}

		if err := b.Delete(currentKey); err != nil {
			return fmt.Errorf("failed to delete %s data: %w", bucket, err)
		}
		return nil
	})
}
