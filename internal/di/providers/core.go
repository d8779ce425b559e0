package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/moviescope/internal/bus"
	"github.com/listenupapp/moviescope/internal/color"
	"github.com/listenupapp/moviescope/internal/logger"
	"github.com/listenupapp/moviescope/internal/selection"
	"github.com/listenupapp/moviescope/internal/store"
	"github.com/listenupapp/moviescope/internal/validation"
)

// ProvideStore provides the in-memory record store.
func ProvideStore(i do.Injector) (*store.Store, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return store.New(log.Logger), nil
}

// ProvideSelection provides the shared selection state.
func ProvideSelection(i do.Injector) (*selection.State, error) {
	return selection.New(), nil
}

// ProvideBus provides the event bus every view subscribes to.
func ProvideBus(i do.Injector) (*bus.Bus, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return bus.New(log.Logger), nil
}

// ProvidePalette provides the shared genre color table.
func ProvidePalette(i do.Injector) (*color.Palette, error) {
	return color.Default(), nil
}

// ProvideValidator provides the struct validator for view configs.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}
