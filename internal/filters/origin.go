package filters

import "inventory-search/pkg/utils"

// OriginSource records which input channel wrote the origin last.
type OriginSource int

const (
	OriginDefault OriginSource = iota
	OriginInput
	OriginMapClick
)

func (o OriginSource) String() string {
	switch o {
	case OriginInput:
		return "input"
	case OriginMapClick:
		return "map"
	default:
		return "default"
	}
}

func (s *State) OriginSource() OriginSource { return s.originSource }

// SetOriginFromInput writes both coordinates from the manual entry fields.
// A field that does not parse becomes NaN.
func (s *State) SetOriginFromInput(latText, lonText string) {
	s.originLat = utils.ParseCoordinate(latText)
	s.originLon = utils.ParseCoordinate(lonText)
	s.originSource = OriginInput
}

// SetLatitudeText writes only the latitude field; the longitude keeps
// whatever the last writer left there.
func (s *State) SetLatitudeText(text string) {
	s.originLat = utils.ParseCoordinate(text)
	s.originSource = OriginInput
}

func (s *State) SetLongitudeText(text string) {
	s.originLon = utils.ParseCoordinate(text)
	s.originSource = OriginInput
}

// SetOriginFromMapClick overwrites the origin with a clicked map point. The
// map widget only produces valid coordinates, so no range check happens here,
// and no search is started.
func (s *State) SetOriginFromMapClick(lat, lon float64) {
	s.originLat = lat
	s.originLon = lon
	s.originSource = OriginMapClick
}
