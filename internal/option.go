package internal

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	dryRun bool
	watch  bool
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithDryRun makes every pass log its decisions without writing anything.
func WithDryRun(on bool) Option {
	return func(a *application) {
		a.dryRun = on
	}
}

// WithWatch keeps the process running and re-reconciles whenever either
// vault changes on disk.
func WithWatch(on bool) Option {
	return func(a *application) {
		a.watch = on
	}
}
