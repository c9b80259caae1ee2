package imageprocessor

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"imageforensics/config"
	"imageforensics/types"
)

// createTestImage creates a solid color test image
func createTestImage(width, height int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func writeJPEG(t *testing.T, dir, name string, img image.Image, quality int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: quality}); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	return path
}

func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	return path
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func TestValidateInput(t *testing.T) {
	dir := t.TempDir()
	red := createTestImage(8, 8, color.NRGBA{R: 255, A: 255})
	jpg := writeJPEG(t, dir, "photo.JPG", red, 90)
	pngPath := writePNG(t, dir, "shot.png", red)
	gif := filepath.Join(dir, "anim.gif")
	if err := os.WriteFile(gif, []byte("GIF89a"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		path      string
		technique types.Technique
		wantErr   bool
	}{
		{"jpeg ghost", jpg, types.TechniqueGhost, false},
		{"jpeg exif", jpg, types.TechniqueExif, false},
		{"png exif", pngPath, types.TechniqueExif, false},
		{"png ela", pngPath, types.TechniqueELA, true},
		{"gif exif", gif, types.TechniqueExif, true},
		{"missing", filepath.Join(dir, "nope.jpg"), types.TechniqueExif, true},
		{"directory", dir, types.TechniqueExif, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateInput(tt.path, tt.technique)
			if tt.wantErr {
				if !types.IsType(err, types.ErrorTypeInvalidInput) {
					t.Errorf("expected invalid input error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestChannelOrderConversion(t *testing.T) {
	buf, err := NewImageBuffer(2, 1, OrderBGR)
	if err != nil {
		t.Fatal(err)
	}
	copy(buf.Pix, []uint8{1, 2, 3, 4, 5, 6})

	rgb := buf.ToRGB()
	if rgb.Order != OrderRGB {
		t.Fatalf("order = %v, want RGB", rgb.Order)
	}
	want := []uint8{3, 2, 1, 6, 5, 4}
	for i := range want {
		if rgb.Pix[i] != want[i] {
			t.Fatalf("rgb.Pix = %v, want %v", rgb.Pix, want)
		}
	}
	if buf.Pix[0] != 1 {
		t.Error("ToRGB mutated the source buffer")
	}
	if rgb.ToRGB() != rgb {
		t.Error("converting to the current order should return the receiver")
	}
}

func TestNewImageBufferRejectsEmpty(t *testing.T) {
	if _, err := NewImageBuffer(0, 10, OrderRGB); err == nil {
		t.Error("expected error for zero width")
	}
}

func TestBufferFromImageRoundTrip(t *testing.T) {
	img := createTestImage(4, 3, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	buf, err := BufferFromImage(img)
	if err != nil {
		t.Fatal(err)
	}
	if buf.Width != 4 || buf.Height != 3 || buf.Order != OrderRGB {
		t.Fatalf("unexpected buffer %dx%d %v", buf.Width, buf.Height, buf.Order)
	}
	r, g, b := buf.At(3, 2)
	if r != 10 || g != 20 || b != 30 {
		t.Errorf("At = (%d,%d,%d), want (10,20,30)", r, g, b)
	}

	back := buf.ToBGR().ToNRGBA()
	if c := back.NRGBAAt(1, 1); c.R != 10 || c.G != 20 || c.B != 30 || c.A != 255 {
		t.Errorf("ToNRGBA = %+v", c)
	}
}

func TestGoLoaderPNG(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "a.png", createTestImage(5, 5, color.NRGBA{G: 200, A: 255}))

	registry := NewImageLoaderRegistry(config.BackendOpenCV)
	buf, err := registry.LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if buf.Order != OrderRGB {
		t.Errorf("png should load through the Go decoders, got order %v", buf.Order)
	}
	if _, g, _ := buf.At(0, 0); g != 200 {
		t.Errorf("green = %d, want 200", g)
	}
}

func TestOpenCVLoaderJPEG(t *testing.T) {
	dir := t.TempDir()
	path := writeJPEG(t, dir, "blue.jpg", createTestImage(16, 16, color.NRGBA{B: 250, A: 255}), 95)

	buf, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if buf.Order != OrderBGR {
		t.Fatalf("order = %v, want BGR", buf.Order)
	}
	b, _, r := buf.At(8, 8)
	if b < 230 || r > 20 {
		t.Errorf("expected blue pixel in BGR order, got b=%d r=%d", b, r)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	corrupt := filepath.Join(dir, "broken.jpg")
	if err := os.WriteFile(corrupt, []byte("not a jpeg"), 0644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{corrupt, filepath.Join(dir, "missing.jpg")} {
		if _, err := Load(path); !types.IsType(err, types.ErrorTypeLoad) {
			t.Errorf("Load(%s) error = %v, want load error", filepath.Base(path), err)
		}
	}
}

func testReencodePreservesShape(t *testing.T, codec Codec) {
	t.Helper()
	src, err := BufferFromImage(createTestImage(32, 24, color.NRGBA{R: 120, G: 60, B: 30, A: 255}))
	if err != nil {
		t.Fatal(err)
	}

	out, err := codec.Reencode(src, 95)
	if err != nil {
		t.Fatalf("%s: Reencode: %v", codec.Name(), err)
	}
	if out.Width != src.Width || out.Height != src.Height || out.Order != src.Order {
		t.Fatalf("%s: shape changed: %dx%d %v", codec.Name(), out.Width, out.Height, out.Order)
	}
	r, g, b := out.At(16, 12)
	if absDiff(r, 120) > 6 || absDiff(g, 60) > 6 || absDiff(b, 30) > 6 {
		t.Errorf("%s: solid color drifted to (%d,%d,%d)", codec.Name(), r, g, b)
	}
}

func TestCodecs(t *testing.T) {
	dir := t.TempDir()
	codecs := []Codec{
		&OpenCVCodec{Format: config.FormatJPEG},
		&TempFileCodec{Format: config.FormatJPEG, Dir: dir},
		&GoCodec{Format: config.FormatJPEG},
		&GoCodec{Format: config.FormatWebP},
	}
	for _, codec := range codecs {
		testReencodePreservesShape(t, codec)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("temp file codec left %d files behind", len(entries))
	}
}

func TestNewCodecSelection(t *testing.T) {
	codec, err := NewCodec(config.CodecConfig{Backend: config.BackendOpenCV, Format: config.FormatJPEG})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := codec.(*OpenCVCodec); !ok {
		t.Errorf("expected OpenCVCodec, got %T", codec)
	}

	codec, err = NewCodec(config.CodecConfig{Backend: config.BackendOpenCV, Format: config.FormatJPEG, TempFile: true})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := codec.(*TempFileCodec); !ok {
		t.Errorf("expected TempFileCodec, got %T", codec)
	}

	if _, err := NewCodec(config.CodecConfig{Backend: config.BackendGo, Format: "gif"}); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestResaveSimilarity(t *testing.T) {
	a, err := BufferFromImage(createTestImage(16, 16, color.NRGBA{R: 100, G: 100, B: 100, A: 255}))
	if err != nil {
		t.Fatalf("BufferFromImage: %v", err)
	}
	same, err := ResaveSimilarity(a, a.Clone())
	if err != nil {
		t.Fatalf("ResaveSimilarity: %v", err)
	}
	if same != 1 {
		t.Errorf("identical buffers scored %v, want 1", same)
	}

	b := a.Clone()
	for i := range b.Pix {
		b.Pix[i] = 151
	}
	got, err := ResaveSimilarity(a, b)
	if err != nil {
		t.Fatalf("ResaveSimilarity: %v", err)
	}
	if want := 1 - 51.0/255.0; got < want-1e-9 || got > want+1e-9 {
		t.Errorf("similarity = %v, want %v", got, want)
	}

	small, _ := NewImageBuffer(4, 4, OrderRGB)
	if _, err := ResaveSimilarity(a, small); err == nil {
		t.Error("expected error for mismatched sizes")
	}
}
