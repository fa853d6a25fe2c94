package voiceid

import "sort"

// Fixed cut points of the tier classifier.
const (
	// SilenceThreshold: a best score this low against every enrolled
	// voice indicates silence or unusable audio rather than an unknown
	// speaker.
	SilenceThreshold = 0.05

	// MinDetectionThreshold: below this the probe is a voice, but not
	// confidently anyone enrolled.
	MinDetectionThreshold = 0.30
)

// Sentinel names reported in place of a resolved user.
const (
	SentinelNoUsers = "No users registered"
	SentinelNoVoice = "Can't hear someone speaking"
	SentinelUnknown = "Unknown Person Speaking"
)

// Tier is the identification outcome class.
type Tier int

const (
	// TierNoUsers: the profile catalog is empty.
	TierNoUsers Tier = iota

	// TierNoVoice: best score below SilenceThreshold.
	TierNoVoice

	// TierUnknownSpeaker: a voice, but below MinDetectionThreshold.
	TierUnknownSpeaker

	// TierLowConfidence: identified, but below the operating threshold.
	TierLowConfidence

	// TierHighConfidence: identified at or above the operating threshold.
	TierHighConfidence
)

func (t Tier) String() string {
	switch t {
	case TierNoUsers:
		return "no_users"
	case TierNoVoice:
		return "no_voice"
	case TierUnknownSpeaker:
		return "unknown_speaker"
	case TierLowConfidence:
		return "low_confidence"
	case TierHighConfidence:
		return "high_confidence"
	default:
		return "invalid"
	}
}

// Identified reports whether the tier names an enrolled speaker.
func (t Tier) Identified() bool {
	return t == TierLowConfidence || t == TierHighConfidence
}

// ProfileScore is the aggregated similarity of the probe against one
// enrolled profile. The mean over all stored samples is the ranking key;
// max and min are diagnostics.
type ProfileScore struct {
	Name       string  `json:"name"`
	AvgScore   float64 `json:"avg_score"`
	MaxScore   float64 `json:"max_score"`
	MinScore   float64 `json:"min_score"`
	NumSamples int     `json:"num_samples"`
}

// IdentificationResult is the outcome of a 1:N identification.
type IdentificationResult struct {
	Identified bool   `json:"identified"`
	Tier       Tier   `json:"-"`
	TierName   string `json:"tier"`

	// Name is the best-matching user, or a sentinel for the
	// no-users / no-voice / unknown-speaker outcomes.
	Name string `json:"name"`

	// Confidence is the best mean score as a percentage (2 decimals).
	Confidence float64 `json:"confidence"`

	// Threshold is the operating point used, as a percentage.
	Threshold float64 `json:"threshold"`

	Method Method `json:"method"`

	// Scores lists every profile's aggregate, sorted descending by mean.
	Scores []ProfileScore `json:"all_scores"`
}

// tierCut is one entry of the ordered classifier table.
type tierCut struct {
	below float64
	tier  Tier
}

// classify evaluates the cut points top-down: the first cut whose bound
// exceeds score wins; scores at or above every cut are high confidence.
func classify(score, threshold float64) Tier {
	cuts := []tierCut{
		{below: SilenceThreshold, tier: TierNoVoice},
		{below: MinDetectionThreshold, tier: TierUnknownSpeaker},
		{below: threshold, tier: TierLowConfidence},
	}
	for _, c := range cuts {
		if score < c.below {
			return c.tier
		}
	}
	return TierHighConfidence
}

// Identify classifies a probe signature against the enrolled profiles.
//
// Per profile, the probe is scored against every stored signature and
// aggregated as the mean. Mean-of-samples is deliberately used over
// max-of-samples: it is more robust to one outlier enrollment sample.
// The best profile is chosen by strict greater-than on the mean, so the
// first profile encountered wins ties.
//
// threshold is the caller's operating point in [0, 1]; method selects
// the similarity measure. Both are validated up front.
func Identify(probe Signature, profiles []UserProfile, threshold float64, method Method) (IdentificationResult, error) {
	if err := checkThreshold(threshold); err != nil {
		return IdentificationResult{}, err
	}
	if !method.Valid() {
		return IdentificationResult{}, ErrUnknownMethod
	}

	if len(profiles) == 0 {
		return IdentificationResult{
			Identified: false,
			Tier:       TierNoUsers,
			TierName:   TierNoUsers.String(),
			Name:       SentinelNoUsers,
			Confidence: 0,
			Threshold:  roundPct(threshold),
			Method:     method,
			Scores:     []ProfileScore{},
		}, nil
	}

	var (
		bestName  string
		bestScore float64
		scores    = make([]ProfileScore, 0, len(profiles))
	)
	for i, profile := range profiles {
		ps, err := scoreProfile(probe, profile, method)
		if err != nil {
			return IdentificationResult{}, err
		}
		scores = append(scores, ps)
		// Seed from the first profile: cosine means can be negative, so a
		// zero starting point would never be beaten.
		if i == 0 || ps.AvgScore > bestScore {
			bestScore = ps.AvgScore
			bestName = profile.Name
		}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].AvgScore > scores[j].AvgScore
	})

	tier := classify(bestScore, threshold)
	name := bestName
	switch tier {
	case TierNoVoice:
		name = SentinelNoVoice
	case TierUnknownSpeaker:
		name = SentinelUnknown
	}

	return IdentificationResult{
		Identified: tier.Identified(),
		Tier:       tier,
		TierName:   tier.String(),
		Name:       name,
		Confidence: roundPct(bestScore),
		Threshold:  roundPct(threshold),
		Method:     method,
		Scores:     scores,
	}, nil
}

// scoreProfile aggregates the probe's similarity over one profile's
// stored signatures.
func scoreProfile(probe Signature, profile UserProfile, method Method) (ProfileScore, error) {
	ps := ProfileScore{Name: profile.Name, NumSamples: len(profile.Signatures)}
	if len(profile.Signatures) == 0 {
		return ps, nil
	}

	var sum float64
	for i, stored := range profile.Signatures {
		s, err := Similarity(probe, stored, method)
		if err != nil {
			return ProfileScore{}, err
		}
		sum += s
		if i == 0 || s > ps.MaxScore {
			ps.MaxScore = s
		}
		if i == 0 || s < ps.MinScore {
			ps.MinScore = s
		}
	}
	ps.AvgScore = sum / float64(len(profile.Signatures))
	return ps, nil
}
