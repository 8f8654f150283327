package kiln

import "log/slog"

type Option func(*builderConfig)

type builderConfig struct {
	logger     *slog.Logger
	onRegister []RegisterObserver
	onProvide  []ProvideObserver
	onInit     []InitObserver
	onDestroy  []DestroyObserver
}

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *builderConfig) {
		cfg.logger = logger
	}
}

// WithRegisterObserver is called for every provider accepted by the builder,
// including those produced by module provider funcs.
func WithRegisterObserver(hook RegisterObserver) Option {
	return func(cfg *builderConfig) {
		cfg.onRegister = append(cfg.onRegister, hook)
	}
}

// WithProvideObserver is called after each constructor or factory runs.
func WithProvideObserver(hook ProvideObserver) Option {
	return func(cfg *builderConfig) {
		cfg.onProvide = append(cfg.onProvide, hook)
	}
}

func WithInitObserver(hook InitObserver) Option {
	return func(cfg *builderConfig) {
		cfg.onInit = append(cfg.onInit, hook)
	}
}

func WithDestroyObserver(hook DestroyObserver) Option {
	return func(cfg *builderConfig) {
		cfg.onDestroy = append(cfg.onDestroy, hook)
	}
}
