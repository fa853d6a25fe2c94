package voiceid

import "time"

// Enrollment sample limits.
const (
	MinEnrollSamples = 1
	MaxEnrollSamples = 5
)

// UserProfile is one enrolled speaker: a unique name, 1-5 signatures
// captured at enrollment, and the aggregate quality metric computed over
// them. Profiles are owned by the store; the decision core only reads
// them and never mutates one in place.
type UserProfile struct {
	ID                 string      `json:"id" msgpack:"id"`
	Name               string      `json:"name" msgpack:"name"`
	Signatures         []Signature `json:"-" msgpack:"signatures"`
	AvgInterSimilarity float64     `json:"avg_inter_similarity" msgpack:"avg_inter_similarity"`
	CreatedAt          time.Time   `json:"created_at" msgpack:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at" msgpack:"updated_at"`
}

// NumSamples returns the enrollment sample count.
func (p *UserProfile) NumSamples() int { return len(p.Signatures) }
