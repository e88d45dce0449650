package usecases

import (
	"context"

	"github.com/sophialabs/scenarioadmin/internal/domain/scenario"
)

// GetScenarioUseCase loads one document.
type GetScenarioUseCase struct {
	store    scenario.Store
	recorder *Recorder
}

// NewGetScenarioUseCase creates a new use case.
func NewGetScenarioUseCase(store scenario.Store, recorder *Recorder) *GetScenarioUseCase {
	return &GetScenarioUseCase{store: store, recorder: recorder}
}

// Execute returns the document stored under key.
func (uc *GetScenarioUseCase) Execute(ctx context.Context, key string) (*scenario.Document, error) {
	start := uc.recorder.clock.Now()
	doc, err := uc.store.Get(ctx, key)
	uc.recorder.record("get", key, start, err)
	if err != nil {
		return nil, err
	}
	return doc, nil
}
