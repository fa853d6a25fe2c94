package voiceid

import "math"

// Enrollment quality constants.
const (
	// LowQualityThreshold flags enrollments whose samples disagree with
	// each other. The flag is advisory: callers decide whether to reject.
	LowQualityThreshold = 0.5

	// DefaultThreshold is the stock operating point, also returned by
	// RecommendThreshold when there are too few samples to personalize.
	DefaultThreshold = 0.65

	// Recommended thresholds are clamped to this range.
	minRecommended = 0.5
	maxRecommended = 0.8
)

// QualityReport measures the internal consistency of one user's
// enrollment samples.
type QualityReport struct {
	NumSamples int `json:"num_samples"`

	// AvgInterSimilarity is the mean similarity over all unordered
	// sample pairs; 1.0 for a single sample (no pairwise basis).
	AvgInterSimilarity float64 `json:"avg_inter_similarity"`

	// MinPair/MaxPair/StdDev describe the pairwise spread.
	// Zero when there are fewer than two samples.
	MinPair float64 `json:"min_pair_similarity"`
	MaxPair float64 `json:"max_pair_similarity"`
	StdDev  float64 `json:"std_pair_similarity"`

	// LowQuality is set when AvgInterSimilarity falls below
	// LowQualityThreshold. Advisory only; never blocks registration.
	LowQuality bool `json:"low_quality"`
}

// CheckQuality computes the enrollment consistency report for a user's
// newly captured signatures.
func CheckQuality(sigs []Signature, method Method) (QualityReport, error) {
	if !method.Valid() {
		return QualityReport{}, ErrUnknownMethod
	}
	report := QualityReport{NumSamples: len(sigs), AvgInterSimilarity: 1.0}
	if len(sigs) < 2 {
		return report, nil
	}

	pairs, err := pairwiseSimilarities(sigs, method)
	if err != nil {
		return QualityReport{}, err
	}

	mean, std := meanStd(pairs)
	report.AvgInterSimilarity = mean
	report.StdDev = std
	report.MinPair = pairs[0]
	report.MaxPair = pairs[0]
	for _, s := range pairs[1:] {
		if s < report.MinPair {
			report.MinPair = s
		}
		if s > report.MaxPair {
			report.MaxPair = s
		}
	}
	report.LowQuality = mean < LowQualityThreshold
	return report, nil
}

// RecommendThreshold derives a personalized operating point from the
// spread of a user's own enrollment samples: mean - stddev of the
// pairwise similarities, clamped to [0.5, 0.8]. With fewer than two
// samples it returns DefaultThreshold.
//
// The recommendation is advisory; it is never silently substituted for
// the caller-supplied threshold.
func RecommendThreshold(sigs []Signature, method Method) (float64, error) {
	if !method.Valid() {
		return 0, ErrUnknownMethod
	}
	if len(sigs) < 2 {
		return DefaultThreshold, nil
	}

	pairs, err := pairwiseSimilarities(sigs, method)
	if err != nil {
		return 0, err
	}
	mean, std := meanStd(pairs)

	recommended := mean - std
	if recommended < minRecommended {
		recommended = minRecommended
	}
	if recommended > maxRecommended {
		recommended = maxRecommended
	}
	return recommended, nil
}

// pairwiseSimilarities computes similarity for every unordered pair.
func pairwiseSimilarities(sigs []Signature, method Method) ([]float64, error) {
	pairs := make([]float64, 0, len(sigs)*(len(sigs)-1)/2)
	for i := 0; i < len(sigs); i++ {
		for j := i + 1; j < len(sigs); j++ {
			s, err := Similarity(sigs[i], sigs[j], method)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, s)
		}
	}
	return pairs, nil
}

// meanStd returns the mean and population standard deviation.
func meanStd(values []float64) (mean, std float64) {
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	for _, v := range values {
		d := v - mean
		std += d * d
	}
	std = math.Sqrt(std / float64(len(values)))
	return mean, std
}
