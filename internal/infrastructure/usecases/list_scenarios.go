package usecases

import (
	"context"

	"github.com/sophialabs/scenarioadmin/internal/domain/scenario"
)

// ListScenariosUseCase lists the storage keys in the catalog.
type ListScenariosUseCase struct {
	store    scenario.Store
	recorder *Recorder
}

// NewListScenariosUseCase creates a new use case.
func NewListScenariosUseCase(store scenario.Store, recorder *Recorder) *ListScenariosUseCase {
	return &ListScenariosUseCase{store: store, recorder: recorder}
}

// Execute returns every storage key. An empty catalog is not an error.
func (uc *ListScenariosUseCase) Execute(ctx context.Context) ([]string, error) {
	start := uc.recorder.clock.Now()
	keys, err := uc.store.List(ctx)
	uc.recorder.record("list", "", start, err)
	if err != nil {
		return nil, err
	}
	return keys, nil
}
