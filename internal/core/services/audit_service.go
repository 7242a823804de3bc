package services

import (
	"context"
	"log"
	"sync"
	"time"

	"amfb-directdebit/internal/adapters/persistence/models"
	"amfb-directdebit/internal/adapters/persistence/repositories"
)

// Audit action tags (closed set)
const (
	ActionCreateBiller         = "CREATE BILLER"
	ActionUpdateBiller         = "UPDATE BILLER"
	ActionCreateProduct        = "CREATE PRODUCT"
	ActionDisableProduct       = "DISABLE PRODUCT"
	ActionCreatePaperMandate   = "CREATE PAPER MANDATE"
	ActionCreateBalanceEnquiry = "INITIATE BALANCE ENQUIRY MANDATE"
	ActionCreateEMandate       = "CREATE E-MANDATE"
	ActionUpdateMandateStatus  = "UPDATE MANDATE STATUS"
	ActionProcessMandate       = "PROCESS MANDATE"
	ActionCreateUser           = "CREATE USER"
	ActionUpdateUser           = "UPDATE USER"
	ActionDeleteUser           = "DELETE USER"
)

// storeTimeout bounds each audit append so a stuck database cannot pin the
// worker forever.
const storeTimeout = 10 * time.Second

// AuditService is the append-only activity trail sink. Events are handed to a
// buffered channel and written by a background worker, so recording never adds
// storage latency to the request path and a failed write never fails the
// operation that produced it. Stop drains outstanding events before shutdown.
type AuditService struct {
	repo   repositories.AuditLogRepository
	events chan models.AuditLog

	mu      sync.Mutex
	closed  bool
	done    chan struct{}
	started bool
}

// NewAuditService creates an audit service with the given dispatch buffer
func NewAuditService(repo repositories.AuditLogRepository, buffer int) *AuditService {
	if buffer <= 0 {
		buffer = 256
	}
	return &AuditService{
		repo:   repo,
		events: make(chan models.AuditLog, buffer),
		done:   make(chan struct{}),
	}
}

// Start launches the background writer
func (s *AuditService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	go s.run()
	log.Println("🚀 Audit worker started")
}

// run drains the event channel until it is closed
func (s *AuditService) run() {
	defer close(s.done)
	for event := range s.events {
		// The loop variable is reused across iterations; copy before taking
		// its address so the repository never sees an overwritten event.
		event := event
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		if err := s.repo.Create(ctx, &event); err != nil {
			// Audit failure is final: logged, never surfaced to the operation
			log.Printf("❌ Failed to create audit log: %v", err)
		}
		cancel()
	}
}

// Record queues an audit event. It never blocks and never reports failure to
// the caller; if the buffer is full the event is dropped with a log line.
func (s *AuditService) Record(user, action, details string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		log.Printf("⚠️ Audit event after shutdown dropped: %s %s", action, details)
		return
	}

	event := models.AuditLog{
		User:      user,
		Action:    action,
		Details:   details,
		CreatedAt: time.Now(),
	}

	select {
	case s.events <- event:
		s.mu.Unlock()
	default:
		s.mu.Unlock()
		log.Printf("⚠️ Audit buffer full, event dropped: %s %s", action, details)
	}
}

// Stop closes the inbox and waits for queued events to be written
func (s *AuditService) Stop() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.events)
	started := s.started
	s.mu.Unlock()

	if started {
		<-s.done
	}
	log.Println("🛑 Audit worker stopped")
}

// List returns the most recent audit entries
func (s *AuditService) List(ctx context.Context, limit int) ([]*models.AuditLog, error) {
	return s.repo.List(ctx, limit)
}
