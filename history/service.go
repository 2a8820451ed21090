package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/google/uuid"
	"go-token-swap"
)

// StoreKey the key the history is persisted under
const StoreKey = "swap-history"

// Service owns the swap history log. It loads the log from its Store on first
// access and saves it after every mutation.
type Service interface {
	Append(ctx context.Context, in swap.RecordInput) (swap.Record, error)
	Records(ctx context.Context) ([]swap.Record, error)
	Clear(ctx context.Context) error
}

type service struct {
	store Store

	// now clock used to timestamp records
	now func() time.Time

	// newID generates record ids
	newID func() string

	logger log.Logger

	// lock guards loaded and log
	lock   sync.Mutex
	loaded bool
	log    Log
}

// NewService returns a Service persisting to store
func NewService(store Store, logger log.Logger) Service {
	return &service{
		store:  store,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: logger,
	}
}

// Append assigns an id and timestamp to in and inserts it at the head of the log.
// Status defaults to success. The new log is only kept once it has been saved.
func (s *service) Append(_ context.Context, in swap.RecordInput) (swap.Record, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.loadLocked(); err != nil {
		return swap.Record{}, err
	}

	status := in.Status
	if status == "" {
		status = swap.StatusSuccess
	}
	record := swap.Record{
		ID:           s.newID(),
		FromCurrency: in.FromCurrency,
		ToCurrency:   in.ToCurrency,
		FromAmount:   in.FromAmount,
		ToAmount:     in.ToAmount,
		Status:       status,
		Timestamp:    s.now().UnixMilli(),
		Rate:         in.Rate,
	}

	next := s.log.Append(record)
	if err := s.saveLocked(next); err != nil {
		return swap.Record{}, err
	}
	s.log = next
	return record, nil
}

// Records returns the log newest first
func (s *service) Records(_ context.Context) ([]swap.Record, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.loadLocked(); err != nil {
		return nil, err
	}
	return s.log.Records(), nil
}

// Clear discards every record
func (s *service) Clear(_ context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	next := s.log.Clear()
	if err := s.saveLocked(next); err != nil {
		return err
	}
	s.log = next
	s.loaded = true
	return nil
}

// loadLocked reads the persisted log once. A missing key is an empty log.
// Undecodable data is logged and replaced by an empty log on the next save.
func (s *service) loadLocked() error {
	if s.loaded {
		return nil
	}
	data, err := s.store.Get([]byte(StoreKey))
	switch {
	case errors.Is(err, ErrNotFound):
		s.log = Log{}
	case err != nil:
		return fmt.Errorf("load history: %w", err)
	default:
		var records []swap.Record
		if err := json.Unmarshal(data, &records); err != nil {
			s.logger.Log("msg", "discarding undecodable history", "err", err)
			records = nil
		}
		s.log = NewLog(records)
	}
	s.loaded = true
	return nil
}

func (s *service) saveLocked(l Log) error {
	data, err := json.Marshal(l.Records())
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	if err := s.store.Put([]byte(StoreKey), data); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}
