package mapdef

import (
	"fmt"
	"strings"
)

// ValidationError lists the required markers a map is missing. Export and
// upload are blocked until the map validates.
type ValidationError struct {
	Missing []MarkerType
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Missing))
	for i, t := range e.Missing {
		names[i] = string(t)
	}
	return fmt.Sprintf("map is missing required markers: %s", strings.Join(names, ", "))
}

// requiredMarkers returns the marker types a playable map of the given mode
// must carry at least one of.
func requiredMarkers(mode Mode, sub ShooterSubMode) []MarkerType {
	switch mode {
	case ModeRace:
		return []MarkerType{MarkerSpawn, MarkerFinish}
	case ModeShooter:
		switch sub {
		case SubModeTeam:
			return []MarkerType{MarkerSpawnA, MarkerSpawnB}
		case SubModeDomination:
			return []MarkerType{MarkerSpawnA, MarkerSpawnB, MarkerCapturePoint}
		default:
			return []MarkerType{MarkerSpawn}
		}
	}
	return nil
}

// Validate checks that the map carries every marker its mode requires. The
// returned error enumerates each missing marker by name.
func (m *Map) Validate() error {
	var missing []MarkerType
	for _, required := range requiredMarkers(m.Mode, m.ShooterSubMode) {
		if _, ok := m.FirstMarker(required); !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// DefaultMap returns the minimal fallback map used when a requested
// multiplayer map fails to load: a floor plane and a single spawn, so the
// match can still start.
func DefaultMap(mode Mode) *Map {
	m := New("default", mode)
	m.ID = "default"
	m.Objects = append(m.Objects, MapObject{
		ID:       "default-floor",
		Type:     ShapePlane,
		Position: Vec3{X: 0, Y: 0, Z: 0},
		Scale:    Vec3{X: 40, Y: 1, Z: 40},
		Color:    "#808080",
		Name:     "floor",
	})
	spawnType := MarkerSpawn
	m.Markers = append(m.Markers, MapMarker{
		ID:       "default-spawn",
		Type:     spawnType,
		Position: Vec3{X: 0, Y: 0.5, Z: 0},
	})
	if mode == ModeRace {
		m.Markers = append(m.Markers, MapMarker{
			ID:       "default-finish",
			Type:     MarkerFinish,
			Position: Vec3{X: 0, Y: 0.5, Z: 20},
		})
	}
	return m
}
