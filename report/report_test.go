package report

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	"imageforensics/forensics"
	"imageforensics/imageprocessor"
	"imageforensics/types"
)

func sampleReport() *types.AnalysisReport {
	r := &types.AnalysisReport{Path: "photo.jpg"}
	r.Add(types.SectionEditing, types.FindingAlert, "Edited with", "GIMP 2.10")
	r.Add(types.SectionCamera, types.FindingInfo, "Make", "Canon")
	r.Add(types.SectionGPS, types.FindingAbsent, "GPS", "GPS coordinates not found")
	r.RawDump = []types.RawTag{
		{Key: "Image Make", Value: "Canon"},
		{Key: "EXIF ExposureTime", Value: "1/200"},
	}
	return r
}

func sampleResult(t *testing.T) *forensics.Result {
	t.Helper()
	buf, err := imageprocessor.NewImageBuffer(8, 6, imageprocessor.OrderRGB)
	if err != nil {
		t.Fatalf("NewImageBuffer: %v", err)
	}
	for i := range buf.Pix {
		buf.Pix[i] = 200
	}
	m := &forensics.DifferenceMap{Width: 4, Height: 2, Origin: image.Pt(2, 2), Values: []float64{0, 1, 2, 3, 4, 5, 6, 7}}
	return &forensics.Result{Technique: types.TechniqueGhost, Parameter: 60, Map: m, Original: buf}
}

func TestPrintReportPlain(t *testing.T) {
	var out bytes.Buffer
	NewPrinter(&out, false).PrintReport(sampleReport())
	text := out.String()

	for _, want := range []string{
		"EXIF analysis: photo.jpg",
		"[!] Edited with: GIMP 2.10",
		"[+] Make: Canon",
		"[-] GPS: GPS coordinates not found",
		"Image Make        : Canon",
		"EXIF ExposureTime : 1/200",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("report missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "\x1b[") {
		t.Error("plain report contains escape codes")
	}
	if strings.Index(text, "Editing") > strings.Index(text, "Camera") {
		t.Error("sections out of order")
	}
}

func TestPrintMapSummary(t *testing.T) {
	var out bytes.Buffer
	res := sampleResult(t)
	NewPrinter(&out, false).PrintMapSummary(res)
	text := out.String()

	if !strings.Contains(text, "map size: 4x2 (offset 2,2 from image origin)") {
		t.Errorf("unexpected summary:\n%s", text)
	}
	if !strings.Contains(text, "min 0.0000  max 7.0000  mean 3.5000") {
		t.Errorf("unexpected stats:\n%s", text)
	}
	if strings.Contains(text, "uniform") {
		t.Error("non-flat map reported as uniform")
	}

	out.Reset()
	res.Map.Values = make([]float64, 8)
	NewPrinter(&out, false).PrintMapSummary(res)
	if !strings.Contains(out.String(), "uniform") {
		t.Errorf("flat map not flagged:\n%s", out.String())
	}
}

func TestRenderMap(t *testing.T) {
	m := &forensics.DifferenceMap{Width: 3, Height: 1, Values: []float64{-1, 0, 1}}
	img := RenderMap(m)
	if img.Pix[0] != 0 || img.Pix[1] != 128 || img.Pix[2] != 255 {
		t.Errorf("rendered pixels = %v", img.Pix)
	}

	flat := RenderMap(&forensics.DifferenceMap{Width: 2, Height: 1, Values: []float64{5, 5}})
	if flat.Pix[0] != 0 || flat.Pix[1] != 0 {
		t.Errorf("flat map rendered %v", flat.Pix)
	}
}

func TestSaveComparison(t *testing.T) {
	res := sampleResult(t)
	path := filepath.Join(t.TempDir(), "cmp.png")
	if err := SaveComparison(path, res); err != nil {
		t.Fatalf("SaveComparison: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("comparison not written: %v", err)
	}

	img, err := imaging.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 6 {
		t.Errorf("comparison size = %v, want 16x6", b)
	}
	// last map value lands at (8+2+3, 2+1)
	r, _, _, _ := img.At(13, 3).RGBA()
	if r>>8 != 255 {
		t.Errorf("map maximum rendered as %d", r>>8)
	}
	r, _, _, _ = img.At(0, 0).RGBA()
	if r>>8 != 200 {
		t.Errorf("original pixel = %d, want 200", r>>8)
	}
}
