package voiceid

import "fmt"

// VerificationResult is the outcome of a 1:1 verification against a
// claimed identity. Unlike identification there are no tiers: a single
// pass/fail boundary on the mean score.
type VerificationResult struct {
	Verified bool   `json:"verified"`
	Message  string `json:"message"`

	// Confidence is the mean similarity as a percentage (primary).
	Confidence float64 `json:"confidence"`

	// MaxConfidence is the best single-sample similarity (secondary).
	MaxConfidence float64 `json:"max_confidence"`
}

// Verify checks whether the probe matches the claimed identity.
//
// A claimed name absent from profiles is not an error: it yields a
// structured verified=false result so the boundary layer can render it
// directly.
func Verify(probe Signature, claimedName string, profiles []UserProfile, threshold float64, method Method) (VerificationResult, error) {
	if err := checkThreshold(threshold); err != nil {
		return VerificationResult{}, err
	}
	if !method.Valid() {
		return VerificationResult{}, ErrUnknownMethod
	}

	var claimed *UserProfile
	for i := range profiles {
		if profiles[i].Name == claimedName {
			claimed = &profiles[i]
			break
		}
	}
	if claimed == nil {
		return VerificationResult{
			Verified:   false,
			Message:    fmt.Sprintf("User %q not registered", claimedName),
			Confidence: 0,
		}, nil
	}

	ps, err := scoreProfile(probe, *claimed, method)
	if err != nil {
		return VerificationResult{}, err
	}

	verified := ps.AvgScore >= threshold
	message := fmt.Sprintf("Voice does not match %q", claimedName)
	if verified {
		message = fmt.Sprintf("Voice verified as %q", claimedName)
	}
	return VerificationResult{
		Verified:      verified,
		Message:       message,
		Confidence:    roundPct(ps.AvgScore),
		MaxConfidence: roundPct(ps.MaxScore),
	}, nil
}
