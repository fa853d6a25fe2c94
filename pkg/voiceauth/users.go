package voiceauth

import (
	"context"
	"time"

	"github.com/voxauth/voxauth/pkg/voiceid"
)

// UserInfo is the catalog view of one enrolled speaker. Signatures are
// deliberately omitted.
type UserInfo struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	NumSamples         int       `json:"num_samples"`
	AvgInterSimilarity float64   `json:"avg_inter_similarity"`
	LowQuality         bool      `json:"low_quality"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Users lists every enrolled speaker, ordered by name.
func (s *Service) Users(ctx context.Context) ([]UserInfo, error) {
	profiles, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]UserInfo, len(profiles))
	for i, p := range profiles {
		users[i] = UserInfo{
			ID:                 p.ID,
			Name:               p.Name,
			NumSamples:         p.NumSamples(),
			AvgInterSimilarity: p.AvgInterSimilarity,
			LowQuality:         p.NumSamples() > 1 && p.AvgInterSimilarity < voiceid.LowQualityThreshold,
			CreatedAt:          p.CreatedAt,
			UpdatedAt:          p.UpdatedAt,
		}
	}
	return users, nil
}

// DeleteUser removes an enrolled speaker. Returns [store.ErrNotFound]
// if the name is not enrolled.
func (s *Service) DeleteUser(ctx context.Context, name string) error {
	if err := s.store.Delete(ctx, name); err != nil {
		return err
	}
	s.log.Info().Str("user", name).Msg("user deleted")
	return nil
}
