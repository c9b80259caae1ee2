package types

import "strings"

// Technique identifies one of the mutually exclusive analyses
type Technique string

const (
	TechniqueExif  Technique = "exif"
	TechniqueGhost Technique = "ghost"
	TechniqueELA   Technique = "ela"
	TechniqueNoise Technique = "noise"
)

// AllTechniques lists the techniques in menu order
var AllTechniques = []Technique{TechniqueExif, TechniqueGhost, TechniqueELA, TechniqueNoise}

// RequiresPixels reports whether the technique decodes the raster.
// EXIF analysis only reads the metadata segments.
func (t Technique) RequiresPixels() bool {
	return t != TechniqueExif
}

// DisplayName returns a human readable label
func (t Technique) DisplayName() string {
	switch t {
	case TechniqueExif:
		return "EXIF metadata"
	case TechniqueGhost:
		return "JPEG Ghost"
	case TechniqueELA:
		return "Error Level Analysis"
	case TechniqueNoise:
		return "Median-filter noise residue"
	default:
		return string(t)
	}
}

// ParseTechnique accepts the canonical name and the historical aliases
func ParseTechnique(name string) (Technique, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "exif", "e":
		return TechniqueExif, true
	case "ghost", "jpegghost", "g":
		return TechniqueGhost, true
	case "ela", "el":
		return TechniqueELA, true
	case "noise", "noise2", "n2", "mfnr":
		return TechniqueNoise, true
	}
	return "", false
}

// FindingKind drives how a finding is rendered
type FindingKind string

const (
	// FindingAlert marks a tamper indicator
	FindingAlert FindingKind = "alert"
	// FindingInfo is a plain reported value
	FindingInfo FindingKind = "info"
	// FindingAbsent means the underlying tag was missing or unparseable
	FindingAbsent FindingKind = "absent"
)

// Section groups findings in the report
type Section string

const (
	SectionMetadata Section = "metadata"
	SectionEditing  Section = "editing"
	SectionCamera   Section = "camera"
	SectionGPS      Section = "gps"
	SectionAuthor   Section = "author"
)

// Finding is a single labeled line of an EXIF report
type Finding struct {
	Section Section     `json:"section"`
	Label   string      `json:"label"`
	Value   string      `json:"value,omitempty"`
	Kind    FindingKind `json:"kind"`
}

// RawTag is one entry of the raw metadata dump
type RawTag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// AnalysisReport is the ordered result of an EXIF analysis
type AnalysisReport struct {
	Path     string    `json:"path"`
	Stripped bool      `json:"stripped"`
	Findings []Finding `json:"findings"`
	RawDump  []RawTag  `json:"raw_dump,omitempty"`
}

// Add appends a finding
func (r *AnalysisReport) Add(section Section, kind FindingKind, label, value string) {
	r.Findings = append(r.Findings, Finding{Section: section, Label: label, Value: value, Kind: kind})
}

// Find returns the first finding with the given label
func (r *AnalysisReport) Find(label string) (Finding, bool) {
	for _, f := range r.Findings {
		if f.Label == label {
			return f, true
		}
	}
	return Finding{}, false
}

// InSection returns the findings of one section, in report order
func (r *AnalysisReport) InSection(section Section) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Section == section {
			out = append(out, f)
		}
	}
	return out
}
