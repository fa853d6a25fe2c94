package voiceauth

import (
	"context"
	"fmt"
	"strings"

	"github.com/voxauth/voxauth/pkg/clips"
	"github.com/voxauth/voxauth/pkg/voiceid"
)

// RegisterResult summarizes a completed enrollment.
type RegisterResult struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	NumSamples int    `json:"num_samples"`

	// Quality is the enrollment consistency report over the stored
	// signatures.
	Quality voiceid.QualityReport `json:"quality"`

	// RecommendedThreshold is a per-user operating point derived from
	// the enrollment samples. Informational; the service threshold is
	// not changed automatically.
	RecommendedThreshold float64 `json:"recommended_threshold"`

	// Warnings carries non-fatal diagnostics from audio validation and
	// the quality check.
	Warnings []string `json:"warnings,omitempty"`
}

// Register enrolls a new speaker from 1 to 5 sample recordings.
//
// Every sample must pass validation; a single bad recording fails the
// whole enrollment so the user can re-record rather than end up with a
// degraded profile. Returns [store.ErrExists] if the name is taken.
func (s *Service) Register(ctx context.Context, name string, samplePaths []string) (*RegisterResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: user name is required", ErrBadRequest)
	}
	if n := len(samplePaths); n < voiceid.MinEnrollSamples || n > voiceid.MaxEnrollSamples {
		return nil, fmt.Errorf("%w: need %d to %d samples, got %d",
			ErrBadRequest, voiceid.MinEnrollSamples, voiceid.MaxEnrollSamples, n)
	}

	var (
		sigs     []voiceid.Signature
		warnings []string
	)
	for i, path := range samplePaths {
		sig, vres, err := s.ingest(ctx, path, name, clips.KindEnroll)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i+1, err)
		}
		sigs = append(sigs, sig)
		warnings = append(warnings, vres.Warnings...)
	}

	quality, err := voiceid.CheckQuality(sigs, s.opts.Method)
	if err != nil {
		return nil, err
	}
	if quality.LowQuality {
		warnings = append(warnings, fmt.Sprintf(
			"enrollment samples are inconsistent (avg similarity %.2f); consider re-recording in a quieter environment",
			quality.AvgInterSimilarity))
	}
	recommended, err := voiceid.RecommendThreshold(sigs, s.opts.Method)
	if err != nil {
		return nil, err
	}

	profile := &voiceid.UserProfile{
		Name:               name,
		Signatures:         sigs,
		AvgInterSimilarity: quality.AvgInterSimilarity,
	}
	if err := s.store.Create(ctx, profile); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("user", name).
		Int("samples", len(sigs)).
		Float64("avg_inter_similarity", quality.AvgInterSimilarity).
		Bool("low_quality", quality.LowQuality).
		Msg("user registered")

	return &RegisterResult{
		ID:                   profile.ID,
		Name:                 profile.Name,
		NumSamples:           len(sigs),
		Quality:              quality,
		RecommendedThreshold: recommended,
		Warnings:             warnings,
	}, nil
}
