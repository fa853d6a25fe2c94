package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/voxauth/voxauth/cmd/voxauth/internal/config"
	"github.com/voxauth/voxauth/pkg/audio/preprocess"
	"github.com/voxauth/voxauth/pkg/clips"
	"github.com/voxauth/voxauth/pkg/voiceauth"
	"github.com/voxauth/voxauth/pkg/voiceid"
	"github.com/voxauth/voxauth/pkg/voiceid/fbankmodel"
	"github.com/voxauth/voxauth/pkg/voiceid/store"
)

// newLogger builds the CLI logger from the configured level. Verbose
// forces debug.
func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

// newProcessor maps the audio config onto pipeline options.
func newProcessor(cfg *config.Config, log zerolog.Logger) *preprocess.Processor {
	opts := preprocess.DefaultOptions()
	opts.NoiseReduction = cfg.Audio.NoiseReduction
	if cfg.Audio.NoiseStrength > 0 {
		opts.NoiseStrength = cfg.Audio.NoiseStrength
	}
	opts.TrimSilence = cfg.Audio.TrimSilence
	if cfg.Audio.TrimTopDB > 0 {
		opts.TopDB = cfg.Audio.TrimTopDB
	}
	opts.PreEmphasis = cfg.Audio.PreEmphasis
	opts.Normalize = cfg.Audio.Normalize
	return preprocess.New(opts, log)
}

// newArchive builds the optional clip archive from config.
func newArchive(cfg *config.Config) (clips.Archive, error) {
	switch cfg.Archive.Backend {
	case "":
		return nil, nil
	case "local":
		if cfg.Archive.Dir == "" {
			return nil, fmt.Errorf("archive.dir is required for the local backend")
		}
		return clips.NewLocal(cfg.Archive.Dir)
	case "s3":
		s3cfg := cfg.Archive.S3
		if s3cfg.Bucket == "" {
			return nil, fmt.Errorf("archive.s3.bucket is required for the s3 backend")
		}
		client := s3.New(s3.Options{
			Region: s3cfg.Region,
			Credentials: aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
				return aws.Credentials{
					AccessKeyID:     s3cfg.AccessKey,
					SecretAccessKey: s3cfg.SecretKey,
				}, nil
			}),
			BaseEndpoint: optionalString(s3cfg.Endpoint),
			UsePathStyle: s3cfg.Endpoint != "",
		})
		return clips.NewS3(client, s3cfg.Bucket, s3cfg.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown archive backend %q", cfg.Archive.Backend)
	}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return aws.String(s)
}

// openService assembles the full service: model, badger store, audio
// pipeline, and optional archive. The caller must Close it.
func openService(cfg *config.Config, log zerolog.Logger) (*voiceauth.Service, error) {
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("data_dir is not configured")
	}
	st, err := store.NewBadger(store.BadgerOptions{Dir: cfg.DataDir, Logger: &log})
	if err != nil {
		return nil, fmt.Errorf("open profile store: %w", err)
	}

	arch, err := newArchive(cfg)
	if err != nil {
		st.Close()
		return nil, err
	}

	svc, err := voiceauth.New(voiceauth.Config{
		Model:     fbankmodel.New(fbankmodel.DefaultConfig()),
		Store:     st,
		Processor: newProcessor(cfg, log),
		Archive:   arch,
		Logger:    log,
		Options: voiceauth.Options{
			Threshold:   cfg.Auth.Threshold,
			Method:      voiceid.Method(cfg.Auth.Method),
			MinDuration: cfg.Auth.MinDuration,
			MaxDuration: cfg.Auth.MaxDuration,
		},
	})
	if err != nil {
		st.Close()
		return nil, err
	}
	return svc, nil
}
