package utils

import (
	"bytes"
	"strings"
	"testing"

	"imageforensics/types"
)

func TestParseArguments(t *testing.T) {
	args, err := ParseArguments([]string{"-g", "-q", "70", "--out=ghost.png", "photo.jpg", "--debug"})
	if err != nil {
		t.Fatalf("ParseArguments: %v", err)
	}
	if args.File != "photo.jpg" {
		t.Errorf("File = %q", args.File)
	}
	want := map[string]string{"ghost": "true", "quality": "70", "out": "ghost.png", "debug": "true"}
	for k, v := range want {
		if got := args.Get(k); got != v {
			t.Errorf("flag %s = %q, want %q", k, got, v)
		}
	}
	if args.Has("exif") {
		t.Error("exif should not be set")
	}
}

func TestParseArgumentsAliases(t *testing.T) {
	cases := map[string]string{
		"-e":          "exif",
		"--jpegghost": "ghost",
		"-el":         "ela",
		"--noise2":    "noise",
		"-n2":         "noise",
		"--mfnr":      "noise",
		"-g":          "ghost",
		"-q=80":       "quality",
		"-h":          "help",
	}
	for flag, canonical := range cases {
		args, err := ParseArguments([]string{flag})
		if err != nil {
			t.Errorf("%s: %v", flag, err)
			continue
		}
		if !args.Has(canonical) {
			t.Errorf("%s did not set %s", flag, canonical)
		}
	}
}

func TestParseArgumentsExiftool(t *testing.T) {
	args, err := ParseArguments([]string{"--exiftool", "a.jpg"})
	if err != nil {
		t.Fatalf("ParseArguments: %v", err)
	}
	if args.Get("exiftool") != "true" || args.File != "a.jpg" {
		t.Errorf("bare --exiftool parsed as %q, file %q", args.Get("exiftool"), args.File)
	}

	args, err = ParseArguments([]string{"--exiftool=/opt/bin/exiftool"})
	if err != nil {
		t.Fatalf("ParseArguments: %v", err)
	}
	if args.Get("exiftool") != "/opt/bin/exiftool" {
		t.Errorf("exiftool path = %q", args.Get("exiftool"))
	}
}

func TestParseArgumentsErrors(t *testing.T) {
	for _, argv := range [][]string{
		{"--bogus"},
		{"-q"},
		{"a.jpg", "b.jpg"},
	} {
		_, err := ParseArguments(argv)
		if !types.IsType(err, types.ErrorTypeInvalidInput) {
			t.Errorf("%v: expected invalid input error, got %v", argv, err)
		}
	}
}

func TestSelectTechnique(t *testing.T) {
	args, _ := ParseArguments([]string{"x.jpg"})
	if tech, err := SelectTechnique(args); err != nil || tech != types.TechniqueExif {
		t.Errorf("default technique = %v, %v", tech, err)
	}

	args, _ = ParseArguments([]string{"-el", "x.jpg"})
	if tech, err := SelectTechnique(args); err != nil || tech != types.TechniqueELA {
		t.Errorf("technique = %v, %v", tech, err)
	}

	args, _ = ParseArguments([]string{"-g", "-el", "x.jpg"})
	if _, err := SelectTechnique(args); !types.IsType(err, types.ErrorTypeInvalidInput) {
		t.Errorf("expected invalid input for two analyses, got %v", err)
	}
}

func TestParseNumbers(t *testing.T) {
	if q, err := ParseQuality("75"); err != nil || q != 75 {
		t.Errorf("ParseQuality = %d, %v", q, err)
	}
	if q, err := ParseQuality("150"); err != nil || q != 150 {
		t.Errorf("out of range quality should pass through, got %d, %v", q, err)
	}
	if _, err := ParseQuality("high"); err == nil {
		t.Error("expected error for non-numeric quality")
	}
	if k, err := ParseKernelSize("4"); err != nil || k != 4 {
		t.Errorf("ParseKernelSize = %d, %v", k, err)
	}
	if _, err := ParseKernelSize("3.5"); err == nil {
		t.Error("expected error for fractional kernel")
	}
}

func TestPrintUsage(t *testing.T) {
	var out bytes.Buffer
	PrintUsage(&out, "imageforensics")
	if !strings.Contains(out.String(), "--jpegghost") || !strings.Contains(out.String(), "imageforensics -e photo.jpg") {
		t.Errorf("usage text incomplete:\n%s", out.String())
	}
}
