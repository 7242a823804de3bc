package services

import (
	"context"
	"log"
	"time"

	"amfb-directdebit/internal/adapters/persistence/repositories"
	"amfb-directdebit/internal/config"

	"github.com/robfig/cron/v3"
)

// sweepTimeout bounds a whole reconciliation run
const sweepTimeout = 5 * time.Minute

// ReconService periodically re-checks recently created local mandates against
// the upstream status endpoint. The sweep is observe-only: divergences are
// logged for operators, local rows are never mutated and refresh-token
// housekeeping rides along on the same schedule.
type ReconService struct {
	mandates      repositories.MandateRepository
	refreshTokens repositories.RefreshTokenRepository
	status        StatusChecker
	cfg           config.ReconConfig
	cron          *cron.Cron
}

// StatusChecker queries the upstream status of a single mandate
type StatusChecker interface {
	MandateStatus(ctx context.Context, mandateCode string) (any, error)
}

// NewReconService creates a new reconciliation service
func NewReconService(
	mandates repositories.MandateRepository,
	refreshTokens repositories.RefreshTokenRepository,
	status StatusChecker,
	cfg config.ReconConfig,
) *ReconService {
	return &ReconService{
		mandates:      mandates,
		refreshTokens: refreshTokens,
		status:        status,
		cfg:           cfg,
		cron:          cron.New(),
	}
}

// Start schedules the reconciliation sweep
func (s *ReconService) Start() error {
	if !s.cfg.Enabled {
		log.Println("⚠️ Reconciliation sweep disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.Schedule, s.Sweep); err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("🚀 Reconciliation sweep scheduled: %s (window %s)", s.cfg.Schedule, s.cfg.Window)
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish
func (s *ReconService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 Reconciliation sweep stopped")
}

// Sweep checks every mandate created inside the window against upstream
func (s *ReconService) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	since := time.Now().Add(-s.cfg.Window)
	mandates, err := s.mandates.ListCreatedSince(ctx, since)
	if err != nil {
		log.Printf("❌ Reconciliation sweep failed to list mandates: %v", err)
		return
	}

	checked, divergent := 0, 0
	for _, mandate := range mandates {
		if ctx.Err() != nil {
			log.Printf("⚠️ Reconciliation sweep aborted after %d checks: %v", checked, ctx.Err())
			return
		}

		data, err := s.status.MandateStatus(ctx, mandate.MandateCode)
		if err != nil {
			divergent++
			log.Printf("⚠️ Reconciliation: mandate %s unverifiable upstream: %v", mandate.MandateCode, err)
			continue
		}
		checked++

		if obj, ok := data.(map[string]any); ok {
			if status, ok := obj["mandateStatus"].(string); ok {
				log.Printf("🔎 Reconciliation: mandate %s upstream status %q", mandate.MandateCode, status)
			}
		}
	}

	if err := s.refreshTokens.DeleteExpired(ctx); err != nil {
		log.Printf("⚠️ Reconciliation: failed to purge expired refresh tokens: %v", err)
	}

	log.Printf("✅ Reconciliation sweep done: %d checked, %d flagged", checked, divergent)
}
