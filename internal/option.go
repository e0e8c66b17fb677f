package internal

import "github.com/starford/raido/internal/engine"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	fileJob *FileJob
	dirJob  *DirJob
	engine  engine.Converter
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithFileJob sets the single-file conversion job.
func WithFileJob(job *FileJob) Option {
	return func(a *application) {
		a.fileJob = job
	}
}

// WithDirJob sets the directory conversion job.
func WithDirJob(job *DirJob) Option {
	return func(a *application) {
		a.dirJob = job
	}
}

// WithEngine overrides the external conversion engine. Used by tests.
func WithEngine(eng engine.Converter) Option {
	return func(a *application) {
		a.engine = eng
	}
}
