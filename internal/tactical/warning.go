package tactical

import (
	"errors"
	"fmt"
	"time"

	"github.com/westpoint-robotics/ros-cot/internal/geodetic"
)

// ErrInvalidWarning is returned for empty warning names and for warning areas
// whose primary classification is WarningNone.
var ErrInvalidWarning = errors.New("invalid warning")

// Warning classifies a warning area.
type Warning uint8

const (
	WarningCommercialTrafficArea Warning = iota
	WarningHighTrafficDensityArea
	WarningMilitaryOperationArea
	WarningTrawlerField
	WarningOther
	WarningNone
)

var warningNames = [...]string{
	WarningCommercialTrafficArea:  "Commercial Traffic Area",
	WarningHighTrafficDensityArea: "High Traffic Density Area",
	WarningMilitaryOperationArea:  "Military Operation Area",
	WarningTrawlerField:           "Trawler Field",
	WarningOther:                  "other",
	WarningNone:                   "none",
}

func (w Warning) String() string {
	if int(w) < len(warningNames) {
		return warningNames[w]
	}
	return fmt.Sprintf("Warning(%d)", uint8(w))
}

// MarshalText encodes the warning by name.
func (w Warning) MarshalText() ([]byte, error) { return []byte(w.String()), nil }

// UnmarshalText decodes a warning name with ParseWarning.
func (w *Warning) UnmarshalText(b []byte) error {
	v, err := ParseWarning(string(b))
	if err != nil {
		return err
	}
	*w = v
	return nil
}

// ParseWarning resolves an exact warning name. Unknown names map to
// WarningOther; an empty name is an error.
func ParseWarning(s string) (Warning, error) {
	if s == "" {
		return WarningNone, fmt.Errorf("%w: empty name", ErrInvalidWarning)
	}
	for i, name := range warningNames {
		if name == s {
			return Warning(i), nil
		}
	}
	return WarningOther, nil
}

// WarningArea groups tactical areas under a warning classification. It never
// affects whether a position is allowed.
type WarningArea struct {
	id        string
	primary   Warning
	secondary Warning
	areas     []Area
}

// NewWarningArea builds a warning area. The primary warning may not be
// WarningNone; pass WarningNone as secondary when there is none.
func NewWarningArea(id string, primary, secondary Warning, areas ...Area) (WarningArea, error) {
	if primary == WarningNone {
		return WarningArea{}, fmt.Errorf("%w: primary warning must be set", ErrInvalidWarning)
	}
	cp := make([]Area, len(areas))
	copy(cp, areas)
	return WarningArea{id: id, primary: primary, secondary: secondary, areas: cp}, nil
}

func (w WarningArea) ID() string         { return w.id }
func (w WarningArea) Primary() Warning   { return w.primary }
func (w WarningArea) Secondary() Warning { return w.secondary }
func (w WarningArea) Len() int           { return len(w.areas) }
func (w WarningArea) Area(i int) Area    { return w.areas[i] }
func (w WarningArea) HasSecondary() bool { return w.secondary != WarningNone }
func (w WarningArea) Areas() []Area      { return append([]Area(nil), w.areas...) }

// Translate shifts every member area's windows by d.
func (w WarningArea) Translate(d time.Duration) WarningArea {
	out := w
	out.areas = make([]Area, len(w.areas))
	for i, a := range w.areas {
		out.areas[i] = a.Translate(d)
	}
	return out
}

// Within reports whether any member area contains c at t.
func (w WarningArea) Within(c geodetic.Coordinate3D, t time.Time) bool {
	for _, a := range w.areas {
		if a.Within(c, t) {
			return true
		}
	}
	return false
}
