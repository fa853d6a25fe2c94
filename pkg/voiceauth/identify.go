package voiceauth

import (
	"context"
	"errors"

	"github.com/voxauth/voxauth/pkg/audio/preprocess"
	"github.com/voxauth/voxauth/pkg/clips"
	"github.com/voxauth/voxauth/pkg/voiceid"
)

// Identify classifies the speaker in a recording against every enrolled
// profile, using the configured operating point.
//
// A recording rejected as silent is not an error: it maps to the
// no-voice outcome, the same answer the decision core gives for a probe
// that matches nobody above the silence cut.
func (s *Service) Identify(ctx context.Context, samplePath string) (voiceid.IdentificationResult, error) {
	return s.IdentifyWith(ctx, samplePath, s.opts.Threshold, s.opts.Method)
}

// IdentifyWith runs one identification with a caller-supplied threshold
// and method, leaving the configured defaults untouched.
func (s *Service) IdentifyWith(ctx context.Context, samplePath string, threshold float64, method voiceid.Method) (voiceid.IdentificationResult, error) {
	probe, _, err := s.ingest(ctx, samplePath, "_probe", clips.KindProbe)
	if err != nil {
		if isSilent(err) {
			return noVoiceResult(threshold, method), nil
		}
		return voiceid.IdentificationResult{}, err
	}

	profiles, err := s.profiles(ctx)
	if err != nil {
		return voiceid.IdentificationResult{}, err
	}

	result, err := voiceid.Identify(probe, profiles, threshold, method)
	if err != nil {
		return voiceid.IdentificationResult{}, err
	}

	s.log.Info().
		Str("tier", result.TierName).
		Str("name", result.Name).
		Float64("confidence", result.Confidence).
		Msg("identification completed")
	return result, nil
}

// profiles loads the full catalog as values for the decision core.
func (s *Service) profiles(ctx context.Context) ([]voiceid.UserProfile, error) {
	stored, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	profiles := make([]voiceid.UserProfile, len(stored))
	for i, p := range stored {
		profiles[i] = *p
	}
	return profiles, nil
}

// isSilent reports whether err is an audio validation failure with the
// silent reason.
func isSilent(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr) && verr.Result.Reason == preprocess.ReasonSilent
}

// noVoiceResult is the structured no-voice outcome used when the probe
// recording itself is silent.
func noVoiceResult(threshold float64, method voiceid.Method) voiceid.IdentificationResult {
	return voiceid.IdentificationResult{
		Identified: false,
		Tier:       voiceid.TierNoVoice,
		TierName:   voiceid.TierNoVoice.String(),
		Name:       voiceid.SentinelNoVoice,
		Confidence: 0,
		Threshold:  threshold * 100,
		Method:     method,
		Scores:     []voiceid.ProfileScore{},
	}
}
