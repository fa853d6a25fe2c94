// Package voiceauth wires the audio pipeline, the signature model, the
// decision core, and the profile store into a single service: register a
// speaker from sample recordings, identify an unknown speaker against the
// catalog, or verify a claimed identity.
//
// The service itself is transport-agnostic. The HTTP layer and the CLI
// both sit on top of it.
package voiceauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/voxauth/voxauth/pkg/audio/preprocess"
	"github.com/voxauth/voxauth/pkg/clips"
	"github.com/voxauth/voxauth/pkg/voiceid"
	"github.com/voxauth/voxauth/pkg/voiceid/store"
)

// Sentinel errors.
var (
	// ErrInvalidAudio is returned when a recording fails validation
	// (missing, too large, too short, too long, or silent).
	ErrInvalidAudio = errors.New("voiceauth: invalid audio")

	// ErrBadRequest is returned for malformed inputs such as an empty
	// user name or a sample count outside the enrollment limits.
	ErrBadRequest = errors.New("voiceauth: bad request")
)

// Duration bounds applied to incoming recordings, in seconds.
const (
	DefaultMinDuration = 2.0
	DefaultMaxDuration = 30.0
)

// Options tunes the service decision parameters. The zero value is
// usable: every field falls back to its default.
type Options struct {
	// Threshold is the caller verification threshold in [0, 1].
	// Defaults to [voiceid.DefaultThreshold].
	Threshold float64

	// Method selects the similarity metric. Defaults to MethodCosine.
	Method voiceid.Method

	// MinDuration and MaxDuration bound accepted recording lengths in
	// seconds. Zero means the package default.
	MinDuration float64
	MaxDuration float64
}

func (o Options) withDefaults() Options {
	if o.Threshold == 0 {
		o.Threshold = voiceid.DefaultThreshold
	}
	if o.Method == "" {
		o.Method = voiceid.MethodCosine
	}
	if o.MinDuration == 0 {
		o.MinDuration = DefaultMinDuration
	}
	if o.MaxDuration == 0 {
		o.MaxDuration = DefaultMaxDuration
	}
	return o
}

// Config assembles the service dependencies.
type Config struct {
	// Model extracts signatures from waveforms. Required.
	Model voiceid.Model

	// Store persists speaker profiles. Required.
	Store store.Store

	// Processor runs the audio cleanup pipeline. If nil, a processor
	// with default options is used.
	Processor *preprocess.Processor

	// Archive keeps processed clips for auditing. Optional; when nil,
	// clips are discarded after signature extraction.
	Archive clips.Archive

	// Logger receives structured service logs.
	Logger zerolog.Logger

	Options Options
}

// Service executes the registration, identification, and verification
// flows. Safe for concurrent use.
type Service struct {
	model voiceid.Model
	store store.Store
	proc  *preprocess.Processor
	arch  clips.Archive
	log   zerolog.Logger
	opts  Options
}

// New validates the configuration and builds a Service.
func New(cfg Config) (*Service, error) {
	if cfg.Model == nil {
		return nil, errors.New("voiceauth: Config.Model is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("voiceauth: Config.Store is required")
	}
	opts := cfg.Options.withDefaults()
	if opts.Threshold < 0 || opts.Threshold > 1 {
		return nil, fmt.Errorf("voiceauth: threshold %v outside [0, 1]", opts.Threshold)
	}
	if !opts.Method.Valid() {
		return nil, fmt.Errorf("voiceauth: unknown similarity method %q", opts.Method)
	}
	if opts.MinDuration >= opts.MaxDuration {
		return nil, fmt.Errorf("voiceauth: min duration %v >= max duration %v",
			opts.MinDuration, opts.MaxDuration)
	}
	proc := cfg.Processor
	if proc == nil {
		proc = preprocess.New(preprocess.DefaultOptions(), cfg.Logger)
	}
	return &Service{
		model: cfg.Model,
		store: cfg.Store,
		proc:  proc,
		arch:  cfg.Archive,
		log:   cfg.Logger,
		opts:  opts,
	}, nil
}

// Options returns the effective decision parameters.
func (s *Service) Options() Options { return s.opts }

// Close releases the model and the store.
func (s *Service) Close() error {
	err := s.model.Close()
	if cerr := s.store.Close(); err == nil {
		err = cerr
	}
	return err
}

// ValidationError reports a recording that failed validation, carrying
// the structured result for the boundary layer. It unwraps to
// [ErrInvalidAudio].
type ValidationError struct {
	Result preprocess.ValidationResult
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("voiceauth: invalid audio: %s (%s)", e.Result.Reason, e.Result.Detail)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidAudio }

// ingest validates, preprocesses, and extracts a signature from one
// recording. The returned validation result carries warnings even on
// success.
func (s *Service) ingest(ctx context.Context, path, user string, kind clips.Kind) (voiceid.Signature, preprocess.ValidationResult, error) {
	res := s.proc.Validate(path, s.opts.MinDuration, s.opts.MaxDuration)
	if !res.Valid {
		return nil, res, &ValidationError{Result: res}
	}

	samples, rate, err := s.proc.PreprocessFile(path)
	if err != nil {
		return nil, res, err
	}

	sig, err := s.model.Extract(samples, rate)
	if err != nil {
		return nil, res, fmt.Errorf("voiceauth: signature extraction: %w", err)
	}

	if s.arch != nil {
		p := clips.NewPath(user, kind, time.Now())
		if err := clips.Save(ctx, s.arch, p, samples, rate); err != nil {
			// Archiving is best-effort. The signature is already extracted.
			s.log.Warn().Err(err).Str("clip", p).Msg("clip archive failed")
		}
	}
	return sig, res, nil
}
