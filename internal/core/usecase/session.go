package usecase

import (
	"context"
	"fmt"

	"github.com/comexkit/tradedocs/internal/core/ports"
)

type SessionUseCase struct {
	store ports.SessionStore
}

func NewSessionUseCase(store ports.SessionStore) *SessionUseCase {
	return &SessionUseCase{store: store}
}

func (uc *SessionUseCase) CreateSession(ctx context.Context) (string, error) {
	id, err := uc.store.Create(ctx)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return id, nil
}
