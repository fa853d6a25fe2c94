// Package voiceid implements the decision core for speaker identification
// and verification over fixed-dimension voice signatures.
//
// # Architecture
//
// A signature is an opaque float32 vector produced by an external
// extractor ([Model]). This package compares signatures
// ([Similarity]), measures enrollment consistency ([CheckQuality],
// [RecommendThreshold]), and classifies probes against enrolled profiles
// ([Identify] for 1:N, [Verify] for 1:1).
//
// All operations are pure and synchronous: each call receives its inputs
// and returns a result with no shared state, so concurrent use needs no
// locking here.
//
// # Confidence tiers
//
// Identification is a four-state classifier over the best per-profile
// mean score, evaluated top-down against two fixed cut points and one
// caller-supplied operating point:
//
//	score < 0.05        → no voice detected
//	score < 0.30        → unknown speaker
//	score < threshold   → identified, low confidence
//	score ≥ threshold   → identified, high confidence
package voiceid

import (
	"errors"
	"fmt"
	"math"
)

// Signature is a fixed-dimension voice embedding vector. The dimension is
// constant across a deployment (192 for the default extractor) but this
// package only requires that compared signatures agree with each other.
type Signature []float32

// Method selects the similarity measure.
type Method string

const (
	// MethodCosine scores 1 - cosineDistance(a, b). Identical non-zero
	// vectors score exactly 1.0; voice embeddings land in ~[0, 1].
	MethodCosine Method = "cosine"

	// MethodEuclidean scores 1/(1 + euclideanDistance(a, b)), mapping
	// unbounded distance into (0, 1]. The mapping is an uncalibrated
	// usability heuristic, kept for parity with existing deployments.
	MethodEuclidean Method = "euclidean"
)

// Configuration errors. These escalate to the caller; they are never
// folded into structured results.
var (
	ErrUnknownMethod     = errors.New("voiceid: unknown similarity method")
	ErrThresholdRange    = errors.New("voiceid: threshold out of range [0, 1]")
	ErrDimensionMismatch = errors.New("voiceid: signature dimension mismatch")
)

// Valid reports whether m is a supported method.
func (m Method) Valid() bool {
	return m == MethodCosine || m == MethodEuclidean
}

// Similarity computes the similarity of two signatures under the given
// method. Higher means more alike. The operation is symmetric:
// Similarity(a, b, m) == Similarity(b, a, m).
func Similarity(a, b Signature, method Method) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	switch method {
	case MethodCosine:
		return cosineSimilarity(a, b), nil
	case MethodEuclidean:
		return euclideanSimilarity(a, b), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
}

// cosineSimilarity returns 1 - cosineDistance = dot(a,b)/(|a|·|b|).
// A zero vector has no direction; similarity against it is 0.
func cosineSimilarity(a, b Signature) float64 {
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// euclideanSimilarity maps L2 distance into (0, 1] via 1/(1+d).
func euclideanSimilarity(a, b Signature) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return 1.0 / (1.0 + math.Sqrt(sum))
}

// checkThreshold validates a caller-supplied operating point.
func checkThreshold(threshold float64) error {
	if threshold < 0 || threshold > 1 {
		return fmt.Errorf("%w: %v", ErrThresholdRange, threshold)
	}
	return nil
}

// roundPct converts a [0,1] score to a percentage rounded to 2 decimals.
func roundPct(score float64) float64 {
	return math.Round(score*10000) / 100
}
