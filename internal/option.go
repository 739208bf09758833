package internal

import "github.com/starford/stickies/internal/window"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	toolkit window.Toolkit
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithToolkit replaces the toolkit picked from App.UI.
func WithToolkit(tk window.Toolkit) Option {
	return func(a *application) {
		a.toolkit = tk
	}
}
