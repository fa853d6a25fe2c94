package voiceid

import (
	"errors"
	"math"
	"testing"
)

// unitVec returns a 2D signature at the given angle from the x axis, so
// that cosine similarity against (1, 0) is exactly cos(angle).
func unitVec(cosine float64) Signature {
	sine := math.Sqrt(1 - cosine*cosine)
	return Signature{float32(cosine), float32(sine)}
}

var probeX = Signature{1, 0}

func TestCosineIdenticalIsOne(t *testing.T) {
	vectors := []Signature{
		{1, 2, 3},
		{-0.5, 0.25, 10, 0.001},
		{0.1},
	}
	for _, v := range vectors {
		s, err := Similarity(v, v, MethodCosine)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(s-1.0) > 1e-6 {
			t.Errorf("Similarity(v, v, cosine) = %v, want 1.0", s)
		}
	}
}

func TestSimilaritySymmetry(t *testing.T) {
	a := Signature{0.3, -0.7, 0.2, 1.5}
	b := Signature{-0.1, 0.4, 0.9, -0.3}
	for _, m := range []Method{MethodCosine, MethodEuclidean} {
		ab, err := Similarity(a, b, m)
		if err != nil {
			t.Fatal(err)
		}
		ba, err := Similarity(b, a, m)
		if err != nil {
			t.Fatal(err)
		}
		if ab != ba {
			t.Errorf("%s: Similarity(a,b)=%v != Similarity(b,a)=%v", m, ab, ba)
		}
	}
}

func TestEuclideanRange(t *testing.T) {
	cases := []struct{ a, b Signature }{
		{Signature{0, 0}, Signature{0, 0}},
		{Signature{1, 1}, Signature{1, 1.001}},
		{Signature{0, 0}, Signature{100, 100}},
		{Signature{-5, 3}, Signature{5, -3}},
	}
	for _, c := range cases {
		s, err := Similarity(c.a, c.b, MethodEuclidean)
		if err != nil {
			t.Fatal(err)
		}
		if s <= 0 || s > 1 {
			t.Errorf("euclidean similarity %v outside (0, 1]", s)
		}
	}

	// Approaches 1 as distance approaches 0.
	near, _ := Similarity(Signature{1, 1}, Signature{1, 1.0001}, MethodEuclidean)
	if near < 0.999 {
		t.Errorf("near-identical vectors score %v, want ~1", near)
	}
	same, _ := Similarity(Signature{2, 3}, Signature{2, 3}, MethodEuclidean)
	if same != 1.0 {
		t.Errorf("identical vectors score %v, want exactly 1.0", same)
	}
}

func TestSimilarityUnknownMethod(t *testing.T) {
	_, err := Similarity(Signature{1}, Signature{1}, Method("manhattan"))
	if !errors.Is(err, ErrUnknownMethod) {
		t.Errorf("err = %v, want ErrUnknownMethod", err)
	}
}

func TestSimilarityDimensionMismatch(t *testing.T) {
	_, err := Similarity(Signature{1, 2}, Signature{1, 2, 3}, MethodCosine)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("err = %v, want ErrDimensionMismatch", err)
	}
}

func TestCosineZeroVector(t *testing.T) {
	s, err := Similarity(Signature{0, 0, 0}, Signature{1, 2, 3}, MethodCosine)
	if err != nil {
		t.Fatal(err)
	}
	if s != 0 {
		t.Errorf("similarity against zero vector = %v, want 0", s)
	}
}
