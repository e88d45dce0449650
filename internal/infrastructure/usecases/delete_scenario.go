package usecases

import (
	"context"

	"github.com/sophialabs/scenarioadmin/internal/domain/scenario"
)

// DeleteScenarioUseCase removes a document.
type DeleteScenarioUseCase struct {
	store    scenario.Store
	recorder *Recorder
}

// NewDeleteScenarioUseCase creates a new use case.
func NewDeleteScenarioUseCase(store scenario.Store, recorder *Recorder) *DeleteScenarioUseCase {
	return &DeleteScenarioUseCase{store: store, recorder: recorder}
}

// Execute removes the document stored under key.
func (uc *DeleteScenarioUseCase) Execute(ctx context.Context, key string) error {
	start := uc.recorder.clock.Now()
	err := uc.store.Delete(ctx, key)
	uc.recorder.record("delete", key, start, err)
	return err
}
