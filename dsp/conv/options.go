package conv

import (
	"fmt"

	"github.com/cwbudde/algo-updateconv/dsp/core"
)

// Strategy selects one of the four IR-update strategies, or a bare
// partitioned engine with no smoothing at all.
type Strategy int

const (
	StrategyOLA Strategy = iota
	StrategyOLS
	StrategyCrossfadeTD
	StrategyCrossfadeFD
	StrategyStepwise
	StrategyFadedStepwise
)

// Config collects the construction parameters shared across strategies.
type Config struct {
	core.ProcessorConfig
	ResponseCapacity  int
	Mixer             Mixer
	FadeSamples       int
	HoldSamples       int
	TransitionSamples int
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns sensible defaults for offline and streaming use.
func DefaultConfig() Config {
	return Config{
		ProcessorConfig:   core.DefaultProcessorConfig(),
		ResponseCapacity:  65536,
		Mixer:             RaisedCosineMixer{},
		FadeSamples:       1024,
		HoldSamples:       0,
		TransitionSamples: 65536,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) Option {
	return func(cfg *Config) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the processing block size.
func WithBlockSize(blockSize int) Option {
	return func(cfg *Config) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// WithResponseCapacity sets the fixed impulse-response capacity.
func WithResponseCapacity(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.ResponseCapacity = n
		}
	}
}

// WithMixer selects the mixing curve used by CrossfadeTD. Ignored by
// strategies that don't use a Mixer.
func WithMixer(m Mixer) Option {
	return func(cfg *Config) {
		if m != nil {
			cfg.Mixer = m
		}
	}
}

// WithFadeSamples sets the crossfade length used by CrossfadeTD.
func WithFadeSamples(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.FadeSamples = n
		}
	}
}

// WithHoldSamples sets the pre-fade hold length used by CrossfadeTD. A value
// of 0 (the default) selects NewCrossfadeTD's fallback hold of
// min(block size, response capacity) rather than no hold.
func WithHoldSamples(n int) Option {
	return func(cfg *Config) {
		if n >= 0 {
			cfg.HoldSamples = n
		}
	}
}

// WithTransitionSamples sets the total swap duration used by
// FadedStepwise. Must be at least the response capacity.
func WithTransitionSamples(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.TransitionSamples = n
		}
	}
}

func applyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// New constructs the Convolver for the requested strategy from the given
// options. ir is the initial impulse response.
func New(strategy Strategy, ir []float32, opts ...Option) (Convolver, error) {
	cfg := applyOptions(opts...)

	switch strategy {
	case StrategyOLA:
		return NewOLA(ir, cfg.BlockSize, cfg.ResponseCapacity)
	case StrategyOLS:
		return NewOLS(ir, cfg.BlockSize, cfg.ResponseCapacity)
	case StrategyCrossfadeTD:
		factory := func(ir []float32, maxBlockSize, maxResponseLength int) (Convolver, error) {
			return NewOLA(ir, maxBlockSize, maxResponseLength)
		}
		return NewCrossfadeTD(factory, cfg.Mixer, ir, cfg.BlockSize, cfg.ResponseCapacity, cfg.FadeSamples, cfg.HoldSamples)
	case StrategyCrossfadeFD:
		return NewCrossfadeFD(ir, cfg.BlockSize, cfg.ResponseCapacity)
	case StrategyStepwise:
		return NewStepwise(ir, cfg.BlockSize, cfg.ResponseCapacity)
	case StrategyFadedStepwise:
		return NewFadedStepwise(ir, cfg.BlockSize, cfg.ResponseCapacity, cfg.TransitionSamples)
	default:
		return nil, fmt.Errorf("conv: unknown strategy %d", strategy)
	}
}
