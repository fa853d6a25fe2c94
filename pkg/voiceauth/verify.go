package voiceauth

import (
	"context"
	"fmt"
	"strings"

	"github.com/voxauth/voxauth/pkg/clips"
	"github.com/voxauth/voxauth/pkg/voiceid"
)

// Verify checks a recording against one claimed identity.
//
// An unregistered name yields a structured verified=false result, not an
// error, so callers can render the outcome uniformly.
func (s *Service) Verify(ctx context.Context, name, samplePath string) (voiceid.VerificationResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return voiceid.VerificationResult{}, fmt.Errorf("%w: user name is required", ErrBadRequest)
	}

	probe, _, err := s.ingest(ctx, samplePath, name, clips.KindProbe)
	if err != nil {
		return voiceid.VerificationResult{}, err
	}

	profiles, err := s.profiles(ctx)
	if err != nil {
		return voiceid.VerificationResult{}, err
	}

	result, err := voiceid.Verify(probe, name, profiles, s.opts.Threshold, s.opts.Method)
	if err != nil {
		return voiceid.VerificationResult{}, err
	}

	s.log.Info().
		Str("user", name).
		Bool("verified", result.Verified).
		Float64("confidence", result.Confidence).
		Msg("verification completed")
	return result, nil
}
