package voiceauth_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/voxauth/voxauth/pkg/audio/wav"
	"github.com/voxauth/voxauth/pkg/clips"
	"github.com/voxauth/voxauth/pkg/voiceauth"
	"github.com/voxauth/voxauth/pkg/voiceid"
	"github.com/voxauth/voxauth/pkg/voiceid/fbankmodel"
	"github.com/voxauth/voxauth/pkg/voiceid/store"
)

// writeTone writes a 2-second 16kHz mono WAV of the given frequency.
func writeTone(t *testing.T, dir, name string, freq float64) string {
	t.Helper()
	samples := make([]float32, 32000)
	for i := range samples {
		samples[i] = float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/16000))
	}
	return writeSamples(t, dir, name, samples)
}

// writeSilence writes a 2-second all-zero WAV.
func writeSilence(t *testing.T, dir, name string) string {
	t.Helper()
	return writeSamples(t, dir, name, make([]float32, 32000))
}

func writeSamples(t *testing.T, dir, name string, samples []float32) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := wav.Encode(f, samples, 16000); err != nil {
		t.Fatal(err)
	}
	return path
}

func newService(t *testing.T, cfg voiceauth.Config) *voiceauth.Service {
	t.Helper()
	if cfg.Model == nil {
		cfg.Model = fbankmodel.New(fbankmodel.DefaultConfig())
	}
	if cfg.Store == nil {
		cfg.Store = store.NewMemory()
	}
	cfg.Logger = zerolog.Nop()
	svc, err := voiceauth.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestNewRejectsBadConfig(t *testing.T) {
	model := fbankmodel.New(fbankmodel.DefaultConfig())
	st := store.NewMemory()

	cases := map[string]voiceauth.Config{
		"no model": {Store: st},
		"no store": {Model: model},
		"bad threshold": {Model: model, Store: st,
			Options: voiceauth.Options{Threshold: 1.5}},
		"bad method": {Model: model, Store: st,
			Options: voiceauth.Options{Method: "hamming"}},
		"inverted durations": {Model: model, Store: st,
			Options: voiceauth.Options{MinDuration: 30, MaxDuration: 5}},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := voiceauth.New(cfg); err == nil {
				t.Fatal("expected config error")
			}
		})
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	svc := newService(t, voiceauth.Config{})

	s1 := writeTone(t, dir, "s1.wav", 440)
	s2 := writeTone(t, dir, "s2.wav", 440)

	res, err := svc.Register(ctx, "alice", []string{s1, s2})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if res.ID == "" || res.Name != "alice" || res.NumSamples != 2 {
		t.Fatalf("result = %+v", res)
	}
	// Identical recordings produce identical signatures.
	if math.Abs(res.Quality.AvgInterSimilarity-1.0) > 1e-6 {
		t.Fatalf("AvgInterSimilarity = %v, want 1.0", res.Quality.AvgInterSimilarity)
	}
	if res.Quality.LowQuality {
		t.Fatal("consistent samples flagged low quality")
	}
	if res.RecommendedThreshold < 0.5 || res.RecommendedThreshold > 0.8 {
		t.Fatalf("RecommendedThreshold = %v outside [0.5, 0.8]", res.RecommendedThreshold)
	}
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	svc := newService(t, voiceauth.Config{})
	sample := writeTone(t, dir, "s.wav", 440)

	if _, err := svc.Register(ctx, "  ", []string{sample}); !errors.Is(err, voiceauth.ErrBadRequest) {
		t.Fatalf("blank name: err = %v", err)
	}
	if _, err := svc.Register(ctx, "bob", nil); !errors.Is(err, voiceauth.ErrBadRequest) {
		t.Fatalf("no samples: err = %v", err)
	}
	six := make([]string, 6)
	for i := range six {
		six[i] = sample
	}
	if _, err := svc.Register(ctx, "bob", six); !errors.Is(err, voiceauth.ErrBadRequest) {
		t.Fatalf("too many samples: err = %v", err)
	}

	silent := writeSilence(t, dir, "quiet.wav")
	if _, err := svc.Register(ctx, "bob", []string{silent}); !errors.Is(err, voiceauth.ErrInvalidAudio) {
		t.Fatalf("silent sample: err = %v", err)
	}
}

func TestRegisterDuplicateName(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	svc := newService(t, voiceauth.Config{})
	sample := writeTone(t, dir, "s.wav", 440)

	if _, err := svc.Register(ctx, "carol", []string{sample}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, err := svc.Register(ctx, "carol", []string{sample})
	if !errors.Is(err, store.ErrExists) {
		t.Fatalf("duplicate: err = %v, want ErrExists", err)
	}
}

func TestIdentify(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	svc := newService(t, voiceauth.Config{})

	enrolled := writeTone(t, dir, "enroll.wav", 440)
	if _, err := svc.Register(ctx, "dave", []string{enrolled}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	probe := writeTone(t, dir, "probe.wav", 440)
	res, err := svc.Identify(ctx, probe)
	if err != nil {
		t.Fatalf("Identify: %v", err)
	}
	if !res.Identified || res.Name != "dave" {
		t.Fatalf("result = %+v, want identified as dave", res)
	}
	if res.Tier != voiceid.TierHighConfidence {
		t.Fatalf("tier = %v, want high confidence", res.TierName)
	}
	if len(res.Scores) != 1 || res.Scores[0].Name != "dave" {
		t.Fatalf("scores = %+v", res.Scores)
	}
}

func TestIdentifyNoUsers(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	svc := newService(t, voiceauth.Config{})

	res, err := svc.Identify(ctx, writeTone(t, dir, "p.wav", 440))
	if err != nil {
		t.Fatalf("Identify: %v", err)
	}
	if res.Tier != voiceid.TierNoUsers || res.Name != voiceid.SentinelNoUsers {
		t.Fatalf("result = %+v, want no-users outcome", res)
	}
}

func TestIdentifySilentProbe(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	svc := newService(t, voiceauth.Config{})

	if _, err := svc.Register(ctx, "erin", []string{writeTone(t, dir, "e.wav", 440)}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	res, err := svc.Identify(ctx, writeSilence(t, dir, "quiet.wav"))
	if err != nil {
		t.Fatalf("Identify: %v", err)
	}
	if res.Tier != voiceid.TierNoVoice || res.Name != voiceid.SentinelNoVoice {
		t.Fatalf("result = %+v, want no-voice outcome", res)
	}
}

func TestVerify(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	svc := newService(t, voiceauth.Config{})

	if _, err := svc.Register(ctx, "frank", []string{writeTone(t, dir, "e.wav", 440)}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	res, err := svc.Verify(ctx, "frank", writeTone(t, dir, "p.wav", 440))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !res.Verified {
		t.Fatalf("result = %+v, want verified", res)
	}

	res, err = svc.Verify(ctx, "nobody", writeTone(t, dir, "p2.wav", 440))
	if err != nil {
		t.Fatalf("Verify unknown: %v", err)
	}
	if res.Verified {
		t.Fatal("unregistered name verified")
	}

	if _, err := svc.Verify(ctx, "", writeTone(t, dir, "p3.wav", 440)); !errors.Is(err, voiceauth.ErrBadRequest) {
		t.Fatalf("blank name: err = %v", err)
	}
}

func TestUsersAndDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	svc := newService(t, voiceauth.Config{})

	users, err := svc.Users(ctx)
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("Users = %d entries on empty store", len(users))
	}

	sample := writeTone(t, dir, "s.wav", 440)
	for _, name := range []string{"zoe", "adam"} {
		if _, err := svc.Register(ctx, name, []string{sample}); err != nil {
			t.Fatalf("Register %s: %v", name, err)
		}
	}

	users, err = svc.Users(ctx)
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if len(users) != 2 || users[0].Name != "adam" || users[1].Name != "zoe" {
		t.Fatalf("Users = %+v, want adam, zoe", users)
	}
	if users[0].NumSamples != 1 || users[0].ID == "" {
		t.Fatalf("user info = %+v", users[0])
	}

	if err := svc.DeleteUser(ctx, "adam"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if err := svc.DeleteUser(ctx, "adam"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("DeleteUser missing: err = %v, want ErrNotFound", err)
	}
}

func TestRegisterArchivesClips(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	archiveDir := t.TempDir()

	arch, err := clips.NewLocal(archiveDir)
	if err != nil {
		t.Fatal(err)
	}
	svc := newService(t, voiceauth.Config{Archive: arch})

	if _, err := svc.Register(ctx, "gina", []string{writeTone(t, dir, "s.wav", 440)}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(archiveDir, "gina", "enroll"))
	if err != nil {
		t.Fatalf("archive dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("archive holds %d clips, want 1", len(entries))
	}
}
