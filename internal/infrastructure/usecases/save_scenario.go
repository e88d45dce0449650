package usecases

import (
	"context"

	"github.com/sophialabs/scenarioadmin/internal/domain/scenario"
)

// SaveScenarioUseCase creates or updates a document.
type SaveScenarioUseCase struct {
	store    scenario.Store
	recorder *Recorder
}

// NewSaveScenarioUseCase creates a new use case.
func NewSaveScenarioUseCase(store scenario.Store, recorder *Recorder) *SaveScenarioUseCase {
	return &SaveScenarioUseCase{store: store, recorder: recorder}
}

// Execute writes doc under key. The document shape is not checked here;
// the store persists what the caller sends.
func (uc *SaveScenarioUseCase) Execute(ctx context.Context, key string, doc *scenario.Document) error {
	start := uc.recorder.clock.Now()
	err := uc.store.Put(ctx, key, doc)
	uc.recorder.record("put", key, start, err)
	return err
}
