package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/comexkit/tradedocs/internal/core/domain"
	"github.com/comexkit/tradedocs/internal/core/ports"
	"github.com/comexkit/tradedocs/internal/core/reconcile"
)

// AnalyzeSessionUseCase reconciles whatever documents a session has
// accumulated so far. Analysis never mutates session state, so it can
// run any number of times as documents arrive.
type AnalyzeSessionUseCase struct {
	store ports.SessionStore
	cfg   reconcile.Config
}

func NewAnalyzeSessionUseCase(store ports.SessionStore, cfg reconcile.Config) *AnalyzeSessionUseCase {
	return &AnalyzeSessionUseCase{store: store, cfg: cfg}
}

func (uc *AnalyzeSessionUseCase) Analyze(ctx context.Context, sessionID string) (*domain.ComparisonResult, error) {
	session, err := uc.store.Snapshot(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	result := reconcile.Compare(session, uc.cfg)
	return &result, nil
}

func (uc *AnalyzeSessionUseCase) Report(ctx context.Context, sessionID string) (*domain.SessionReport, error) {
	session, err := uc.store.Snapshot(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	result := reconcile.Compare(session, uc.cfg)
	return &domain.SessionReport{
		GeneratedAt: time.Now().UTC(),
		Documents:   session,
		Analysis:    &result,
	}, nil
}
