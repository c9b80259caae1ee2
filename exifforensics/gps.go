package exifforensics

import (
	"fmt"
	"math"
	"strings"

	"imageforensics/types"
)

// Coordinate is a signed decimal-degree position
type Coordinate struct {
	Latitude     float64
	LatitudeRef  string
	Longitude    float64
	LongitudeRef string
}

// ConvertToDegrees converts a degrees-minutes-seconds tuple to decimal
// degrees: d + m/60 + s/3600
func ConvertToDegrees(dms []float64) (float64, error) {
	if len(dms) < 3 {
		return 0, types.NewSubfieldParseError("GPS coordinate", fmt.Errorf("need 3 components, got %d", len(dms)))
	}
	for _, v := range dms[:3] {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, types.NewSubfieldParseError("GPS coordinate", fmt.Errorf("non-finite component %v", v))
		}
	}
	return dms[0] + dms[1]/60.0 + dms[2]/3600.0, nil
}

// SignedCoordinate negates value unless ref names the positive hemisphere
func SignedCoordinate(value float64, ref, positive string) float64 {
	if strings.TrimSpace(ref) != positive {
		return -value
	}
	return value
}

// ReadCoordinate extracts the position from a GPS sub-record. Every failure
// is reported as a SubfieldParseError so the caller can mark the field absent.
func ReadCoordinate(gps *MetadataRecord) (Coordinate, error) {
	lat, okLat := gps.Get(GPSLatitude)
	latRef, okLatRef := gps.Text(GPSLatitudeRef)
	lng, okLng := gps.Get(GPSLongitude)
	lngRef, okLngRef := gps.Text(GPSLongitudeRef)
	if !okLat || !okLatRef || !okLng || !okLngRef {
		return Coordinate{}, types.NewSubfieldParseError("GPS coordinate", fmt.Errorf("incomplete GPS sub-record"))
	}
	if lat.Kind != KindNumbers || lng.Kind != KindNumbers {
		return Coordinate{}, types.NewSubfieldParseError("GPS coordinate", fmt.Errorf("non-numeric coordinate"))
	}

	latDeg, err := ConvertToDegrees(lat.Numbers)
	if err != nil {
		return Coordinate{}, err
	}
	lngDeg, err := ConvertToDegrees(lng.Numbers)
	if err != nil {
		return Coordinate{}, err
	}

	return Coordinate{
		Latitude:     SignedCoordinate(latDeg, latRef, "N"),
		LatitudeRef:  latRef,
		Longitude:    SignedCoordinate(lngDeg, lngRef, "E"),
		LongitudeRef: lngRef,
	}, nil
}
