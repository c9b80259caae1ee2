package types

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsType(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewLoadError("bad file", "a.jpg", nil))
	if !IsType(err, ErrorTypeLoad) {
		t.Error("expected load error through wrapping")
	}
	if IsType(err, ErrorTypeEncode) {
		t.Error("load error reported as encode error")
	}
	if IsType(errors.New("plain"), ErrorTypeLoad) {
		t.Error("plain error reported as load error")
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), true},
		{"invalid input", NewInvalidInputError("bad", "x.gif", nil), true},
		{"load", NewLoadError("bad", "x.jpg", nil), true},
		{"encode", NewEncodeError("bad", nil), true},
		{"metadata absent", NewMetadataAbsentError("x.png", nil), false},
		{"subfield", fmt.Errorf("gps: %w", NewSubfieldParseError("GPS coordinate", nil)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFatal(tt.err); got != tt.want {
				t.Errorf("IsFatal(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestParseTechnique(t *testing.T) {
	for name, want := range map[string]Technique{
		"e":         TechniqueExif,
		"jpegghost": TechniqueGhost,
		"EL":        TechniqueELA,
		"noise2":    TechniqueNoise,
		"mfnr":      TechniqueNoise,
	} {
		if got, ok := ParseTechnique(name); !ok || got != want {
			t.Errorf("ParseTechnique(%q) = %q, %v", name, got, ok)
		}
	}
	if _, ok := ParseTechnique("quality"); ok {
		t.Error("quality is not a technique")
	}
}
