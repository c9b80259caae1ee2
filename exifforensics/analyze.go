package exifforensics

import (
	"fmt"
	"strings"

	"imageforensics/config"
	"imageforensics/logging"
	"imageforensics/types"
)

// Finding labels
const (
	LabelStripped         = "Metadata stripped"
	LabelSoftware         = "Edited with"
	LabelModifyDate       = "Modified"
	LabelOriginalDate     = "Shutter actuation"
	LabelCreateDate       = "Created"
	LabelNoIndicators     = "Editing indicators"
	LabelMake             = "Make"
	LabelModel            = "Model"
	LabelExposure         = "Exposure"
	LabelAperture         = "Aperture"
	LabelFocalLength      = "Focal length"
	LabelISO              = "ISO speed"
	LabelFlash            = "Flash"
	LabelNoCamera         = "Camera"
	LabelLatitude         = "Latitude"
	LabelLongitude        = "Longitude"
	LabelNoGPS            = "GPS"
	LabelAuthor           = "Author"
	LabelCopyright        = "Copyright"
	LabelProfileCopyright = "Profile copyright"
)

// NotAvailable is reported for optional fields that are absent
const NotAvailable = "N/A"

// Analyzer runs the metadata heuristics
type Analyzer struct {
	Raw RawTagSource
}

// NewAnalyzer picks the raw tag source from the configuration. exiftool is
// used only when requested and present on the system.
func NewAnalyzer(cfg config.MetadataConfig) *Analyzer {
	if cfg.UseExiftool {
		if ExiftoolAvailable(cfg.ExiftoolPath) {
			return &Analyzer{Raw: &ExiftoolRawSource{BinaryPath: cfg.ExiftoolPath}}
		}
		logging.LogWarning("exiftool requested but not found, falling back to go-exif")
	}
	return &Analyzer{Raw: FlatRawSource{}}
}

// Analyze builds the metadata report for path. Only an unreadable file is
// an error; missing or malformed tags degrade to absent findings.
func (a *Analyzer) Analyze(path string) (*types.AnalysisReport, error) {
	report := &types.AnalysisReport{Path: path}

	record, err := ExtractStructured(path)
	if err != nil {
		if types.IsType(err, types.ErrorTypeMetadataAbsent) {
			logging.DebugLog("No structured metadata in %s: %v", path, err)
			report.Stripped = true
			report.Add(types.SectionMetadata, types.FindingAlert, LabelStripped,
				"EXIF data has been stripped; the photo may come from social media or a re-upload")
			return report, nil
		}
		return nil, err
	}

	addEditingFindings(report, record)

	rawTags := a.extractRaw(path)
	addCameraFindings(report, RawMap(rawTags))
	addGPSFindings(report, record)
	addAuthorFindings(report, record)
	report.RawDump = rawTags

	return report, nil
}

func (a *Analyzer) extractRaw(path string) []types.RawTag {
	source := a.Raw
	if source == nil {
		source = FlatRawSource{}
	}
	tags, err := source.Extract(path)
	if err != nil {
		logging.LogWarning("Raw tag pass (%s) failed for %s: %v", source.Name(), path, err)
		return nil
	}
	return tags
}

func addEditingFindings(report *types.AnalysisReport, record *MetadataRecord) {
	software, hasSoftware := record.Text(TagSoftware)
	modified, hasModified := record.Text(TagModifyDate)
	original, hasOriginal := record.Text(TagOriginalDate)
	created, hasCreated := record.Text(TagCreateDate)

	if hasSoftware {
		report.Add(types.SectionEditing, types.FindingAlert, LabelSoftware, software)
	}
	if hasModified {
		report.Add(types.SectionEditing, types.FindingInfo, LabelModifyDate, modified)
	}
	if hasOriginal {
		report.Add(types.SectionEditing, types.FindingInfo, LabelOriginalDate, original)
	}
	if hasCreated && created != original {
		report.Add(types.SectionEditing, types.FindingAlert, LabelCreateDate, created)
	}
	if !hasSoftware && !hasModified && !hasOriginal && !hasCreated {
		report.Add(types.SectionEditing, types.FindingInfo, LabelNoIndicators,
			"no software or date modification indicators in common EXIF tags")
	}
}

func addCameraFindings(report *types.AnalysisReport, raw map[string]string) {
	get := func(key string) (string, bool) {
		v, ok := raw[key]
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	cameraMake, hasMake := get("Image Make")
	model, hasModel := get("Image Model")
	if !hasMake || !hasModel {
		report.Add(types.SectionCamera, types.FindingAbsent, LabelNoCamera, "no camera make/model found")
		return
	}

	report.Add(types.SectionCamera, types.FindingInfo, LabelMake, cameraMake)
	report.Add(types.SectionCamera, types.FindingInfo, LabelModel, model)

	optional := []struct {
		label, key, suffix string
	}{
		{LabelExposure, "EXIF ExposureTime", ""},
		{LabelAperture, "EXIF ApertureValue", ""},
		{LabelFocalLength, "EXIF FocalLength", " mm"},
		{LabelISO, "EXIF ISOSpeedRatings", ""},
		{LabelFlash, "EXIF Flash", ""},
	}
	for _, o := range optional {
		v, ok := get(o.key)
		if !ok {
			report.Add(types.SectionCamera, types.FindingAbsent, o.label, NotAvailable)
			continue
		}
		if o.suffix != "" && !strings.HasSuffix(v, strings.TrimSpace(o.suffix)) {
			v += o.suffix
		}
		report.Add(types.SectionCamera, types.FindingInfo, o.label, v)
	}
}

func addGPSFindings(report *types.AnalysisReport, record *MetadataRecord) {
	gps, ok := record.GPS()
	if !ok {
		report.Add(types.SectionGPS, types.FindingAbsent, LabelNoGPS, "GPS coordinates not found")
		return
	}

	coord, err := ReadCoordinate(gps)
	if err != nil {
		logging.DebugLog("GPS sub-record present but unusable: %v", err)
		report.Add(types.SectionGPS, types.FindingAbsent, LabelNoGPS, "GPS coordinates not found")
		return
	}

	report.Add(types.SectionGPS, types.FindingAlert, LabelLatitude,
		fmt.Sprintf("%.6f (%s)", coord.Latitude, coord.LatitudeRef))
	report.Add(types.SectionGPS, types.FindingAlert, LabelLongitude,
		fmt.Sprintf("%.6f (%s)", coord.Longitude, coord.LongitudeRef))
}

func addAuthorFindings(report *types.AnalysisReport, record *MetadataRecord) {
	fields := []struct {
		label string
		id    TagID
	}{
		{LabelAuthor, TagXPAuthor},
		{LabelCopyright, TagCopyright},
		{LabelProfileCopyright, TagProfileCopyright},
	}
	for _, f := range fields {
		v, ok := record.Text(f.id)
		if f.id == TagXPAuthor {
			v = strings.Trim(v, "\x00")
			ok = ok && v != ""
		}
		if !ok {
			report.Add(types.SectionAuthor, types.FindingAbsent, f.label, NotAvailable)
			continue
		}
		report.Add(types.SectionAuthor, types.FindingInfo, f.label, v)
	}
}
