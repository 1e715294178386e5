// SPDX-License-Identifier: MIT

// Package nn: functional options shared by every layer constructor.
// This file defines:
//   - Settings (resolved name, logger, recorder, random source),
//   - Option constructors that panic on nonsensical values (programmer error),
//   - NewSettings, which fills the defaults.
//
// Defaults:
//   - name: "<kind>-<first 8 hex digits of a random UUID>",
//   - logger: slog.Default() with a "layer" attribute,
//   - recorder: NopRecorder,
//   - source: seeded from runtime entropy (use WithSeed for reproducible runs).

package nn

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Settings is the resolved, per-layer ambient configuration.
type Settings struct {
	Name     string
	Logger   *slog.Logger
	Recorder Recorder
	Source   *Source

	base *slog.Logger
}

// Option mutates Settings during NewSettings.
type Option func(*Settings)

// WithName sets the layer name used for parameter names, logs and metrics.
// Panics on an empty name.
func WithName(name string) Option {
	if strings.TrimSpace(name) == "" {
		panic("nn: WithName: empty name")
	}

	return func(s *Settings) { s.Name = name }
}

// WithLogger sets the structured logger. Panics on nil.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("nn: WithLogger: nil logger")
	}

	return func(s *Settings) { s.Logger = l }
}

// WithRecorder sets the metrics recorder. Panics on nil.
func WithRecorder(r Recorder) Option {
	if r == nil {
		panic("nn: WithRecorder: nil recorder")
	}

	return func(s *Settings) { s.Recorder = r }
}

// WithSeed makes initialisation and dropout deterministic.
func WithSeed(seed uint64) Option {
	return func(s *Settings) { s.Source = NewSource(seed) }
}

// WithSource shares an existing random stream. Panics on nil.
func WithSource(src *Source) Option {
	if src == nil {
		panic("nn: WithSource: nil source")
	}

	return func(s *Settings) { s.Source = src }
}

// NewSettings applies opts over the defaults for a layer of the given kind.
func NewSettings(kind string, opts ...Option) Settings {
	s := Settings{}
	for _, opt := range opts {
		opt(&s)
	}
	if s.Name == "" {
		s.Name = kind + "-" + uuid.NewString()[:8]
	}
	if s.Logger == nil {
		s.Logger = slog.Default()
	}
	s.base = s.Logger
	s.Logger = s.Logger.With(slog.String("layer", s.Name))
	if s.Recorder == nil {
		s.Recorder = NopRecorder{}
	}
	if s.Source == nil {
		s.Source = newEntropySource()
	}

	return s
}

// Sub returns options for a sub-layer: name "<parent>/<suffix>", the parent's
// logger and recorder, and a child random stream derived now.
func (s Settings) Sub(suffix string) []Option {
	return []Option{
		WithName(s.Name + "/" + suffix),
		WithLogger(s.baseLogger()),
		WithRecorder(s.Recorder),
		WithSource(s.Source.Child()),
	}
}

func (s Settings) baseLogger() *slog.Logger {
	if s.base != nil {
		return s.base
	}

	return s.Logger
}

// Built logs a completed build at debug level.
func (s Settings) Built(params *ParamSet, attrs ...any) {
	attrs = append(attrs, slog.Int("parameters", params.Size()))
	s.Logger.Debug("layer built", attrs...)
}

// Degenerate logs and records a numerical fallback; count 0 is a no-op.
func (s Settings) Degenerate(kind string, count int) {
	if count <= 0 {
		return
	}
	s.Logger.Debug("degenerate input handled", slog.String("kind", kind), slog.Int("count", count))
	s.Recorder.ObserveDegenerate(s.Name, kind, count)
}

// Observe records a successful forward call that started at start.
func (s Settings) Observe(start time.Time) {
	s.Recorder.ObserveForward(s.Name, time.Since(start))
}
