package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"imageforensics/forensics"
	"imageforensics/types"
)

var sectionTitles = map[types.Section]string{
	types.SectionMetadata: "Metadata",
	types.SectionEditing:  "Editing",
	types.SectionCamera:   "Camera",
	types.SectionGPS:      "GPS",
	types.SectionAuthor:   "Author / Copyright",
}

var sectionOrder = []types.Section{
	types.SectionMetadata,
	types.SectionEditing,
	types.SectionCamera,
	types.SectionGPS,
	types.SectionAuthor,
}

// Printer writes reports in the terminal style of the tool
type Printer struct {
	out    io.Writer
	header *color.Color
	alert  *color.Color
	info   *color.Color
	absent *color.Color
}

// NewPrinter creates a printer; colors are stripped when useColor is false
func NewPrinter(out io.Writer, useColor bool) *Printer {
	p := &Printer{
		out:    out,
		header: color.New(color.FgCyan, color.Bold),
		alert:  color.New(color.FgRed, color.Bold),
		info:   color.New(color.FgGreen),
		absent: color.New(color.FgYellow),
	}
	for _, c := range []*color.Color{p.header, p.alert, p.info, p.absent} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *Printer) marker(kind types.FindingKind) string {
	switch kind {
	case types.FindingAlert:
		return p.alert.Sprint("[!]")
	case types.FindingAbsent:
		return p.absent.Sprint("[-]")
	default:
		return p.info.Sprint("[+]")
	}
}

// PrintReport writes an EXIF report grouped by section
func (p *Printer) PrintReport(r *types.AnalysisReport) {
	fmt.Fprintf(p.out, "%s %s\n", p.header.Sprint("EXIF analysis:"), r.Path)

	for _, section := range sectionOrder {
		findings := r.InSection(section)
		if len(findings) == 0 {
			continue
		}
		fmt.Fprintf(p.out, "\n%s\n", p.header.Sprint(sectionTitles[section]))
		for _, f := range findings {
			if f.Value == "" {
				fmt.Fprintf(p.out, "  %s %s\n", p.marker(f.Kind), f.Label)
				continue
			}
			fmt.Fprintf(p.out, "  %s %s: %s\n", p.marker(f.Kind), f.Label, f.Value)
		}
	}

	if len(r.RawDump) > 0 {
		fmt.Fprintf(p.out, "\n%s\n", p.header.Sprint("Raw metadata"))
		width := 0
		for _, tag := range r.RawDump {
			if len(tag.Key) > width {
				width = len(tag.Key)
			}
		}
		for _, tag := range r.RawDump {
			fmt.Fprintf(p.out, "  %-*s : %s\n", width, tag.Key, tag.Value)
		}
	}
}

// PrintMapSummary writes the geometry and statistics of an engine result
func (p *Printer) PrintMapSummary(res *forensics.Result) {
	m := res.Map
	param := "quality"
	if res.Technique == types.TechniqueNoise {
		param = "kernel"
	}

	fmt.Fprintf(p.out, "%s %s=%d\n", p.header.Sprint(res.Technique.DisplayName()+":"), param, res.Parameter)
	fmt.Fprintf(p.out, "  map size: %dx%d", m.Width, m.Height)
	if m.Origin.X != 0 || m.Origin.Y != 0 {
		fmt.Fprintf(p.out, " (offset %d,%d from image origin)", m.Origin.X, m.Origin.Y)
	}
	fmt.Fprintln(p.out)

	if res.Technique != types.TechniqueNoise {
		fmt.Fprintf(p.out, "  resave similarity: %.4f\n", res.Similarity)
	}

	s := m.Stats()
	fmt.Fprintf(p.out, "  min %.4f  max %.4f  mean %.4f  stddev %.4f\n", s.Min, s.Max, s.Mean, s.StdDev)
	if m.IsFlat() {
		fmt.Fprintf(p.out, "  %s %s\n", p.marker(types.FindingAbsent), "map is uniform, no region stands out")
	}
}
