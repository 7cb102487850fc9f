package runner

import (
	"github.com/samber/do/v2"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/xcompress/xcompress/internal/engine"
	"github.com/xcompress/xcompress/internal/engine/executor"
	"github.com/xcompress/xcompress/internal/engine/formats"
)

// BuildContainer creates a new DI container with all dependencies registered.
// Dependencies are lazily initialized when first requested.
func BuildContainer(logger *zap.Logger, tools engine.ToolPaths, opts ...Option) *do.RootScope {
	injector := do.New()

	// Eager: created by the caller
	do.ProvideValue(injector, logger)
	do.ProvideValue(injector, tools)
	do.ProvideValue[afero.Fs](injector, afero.NewOsFs())

	do.Provide(injector, func(i do.Injector) (*engine.Registry, error) {
		log := do.MustInvoke[*zap.Logger](i)
		return BuildRegistry(log.Named("builder")), nil
	})

	do.Provide(injector, func(i do.Injector) (engine.Prober, error) {
		log := do.MustInvoke[*zap.Logger](i)
		return executor.NewProber(log.Named("probe")), nil
	})

	do.Provide(injector, func(i do.Injector) (engine.Executor, error) {
		log := do.MustInvoke[*zap.Logger](i)
		fs := do.MustInvoke[afero.Fs](i)
		return executor.New(log.Named("executor"), fs), nil
	})

	do.Provide(injector, func(i do.Injector) (*Runner, error) {
		return New(
			do.MustInvoke[*zap.Logger](i).Named("runner"),
			do.MustInvoke[afero.Fs](i),
			do.MustInvoke[engine.ToolPaths](i),
			do.MustInvoke[*engine.Registry](i),
			do.MustInvoke[engine.Prober](i),
			do.MustInvoke[engine.Executor](i),
			opts...,
		), nil
	})

	return injector
}

// BuildRegistry creates a new registry with the candidate tools of every format registered.
func BuildRegistry(logger *zap.Logger) *engine.Registry {
	registry := engine.NewRegistry(logger)
	formats.Register(registry)
	return registry
}
