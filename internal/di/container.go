// Package di builds the CLI's object graph.
package di

import (
	"github.com/samber/do/v2"
)

// NewContainer registers every provider. Nothing is built until invoked.
func NewContainer() *do.RootScope {
	injector := do.New()

	do.Provide(injector, ProvideConfig)
	do.Provide(injector, ProvideLogger)
	do.Provide(injector, ProvidePrefs)
	do.Provide(injector, ProvideRemote)
	do.Provide(injector, ProvideState)

	return injector
}
