package activity

import "context"

// DefaultChannel tags events that do not name a channel.
const DefaultChannel = "console"

// Config toggles activity emission.
type Config struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Channel string `mapstructure:"channel" yaml:"channel"`
}

// Emitter stamps the configured channel on events and forwards them to hooks.
type Emitter struct {
	hooks Hooks
	cfg   Config
}

// NewEmitter builds an emitter. It is disabled when cfg says so or when
// there are no hooks.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	return &Emitter{hooks: hooks, cfg: cfg}
}

// Enabled reports whether Emit delivers anything.
func (e *Emitter) Enabled() bool {
	return e != nil && e.cfg.Enabled && len(e.hooks) > 0
}

// Emit delivers evt to the hooks when enabled.
func (e *Emitter) Emit(ctx context.Context, evt Event) error {
	if !e.Enabled() {
		return nil
	}
	if evt.Channel == "" {
		evt.Channel = e.cfg.Channel
	}
	return e.hooks.Notify(ctx, evt)
}
