package mapdef

import (
	"encoding/json"
	"strings"
	"testing"
)

func testMap() *Map {
	m := New("circuit", ModeRace)
	m.Objects = append(m.Objects, MapObject{
		ID:       "obj-1",
		Type:     ShapeBox,
		Position: Vec3{X: 1.5, Y: 0.5, Z: -2},
		Rotation: Vec3{},
		Scale:    Vec3{X: 1, Y: 1, Z: 1},
		Color:    "#ff0000",
		Name:     "crate",
	})
	m.Markers = append(m.Markers,
		MapMarker{ID: "mk-1", Type: MarkerSpawn, Position: Vec3{X: 0, Y: 0.5, Z: 0}},
		MapMarker{ID: "mk-2", Type: MarkerCheckpoint, Position: Vec3{X: 5, Y: 0.5, Z: 0}},
		MapMarker{ID: "mk-3", Type: MarkerFinish, Position: Vec3{X: 10, Y: 0.5, Z: 0}},
	)
	return m
}

func TestExportLoadRoundTrip(t *testing.T) {
	m := testMap()
	data, err := m.Export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	loaded, err := Load(data)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	out, err := loaded.Export()
	if err != nil {
		t.Fatalf("re-export: %v", err)
	}
	if string(data) != string(out) {
		t.Fatalf("round trip altered the document:\n%s\n---\n%s", data, out)
	}
	if len(loaded.Objects) != 1 || len(loaded.Markers) != 3 {
		t.Fatalf("round trip lost entries: %d objects, %d markers", len(loaded.Objects), len(loaded.Markers))
	}
}

func TestInterchangeFieldNames(t *testing.T) {
	data, err := testMap().Export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, field := range []string{"id", "name", "mode", "objects", "markers", "createdAt", "updatedAt"} {
		if _, ok := doc[field]; !ok {
			t.Fatalf("interchange document missing field %q", field)
		}
	}
	// shooterSubMode is omitted for race maps.
	if _, ok := doc["shooterSubMode"]; ok {
		t.Fatal("race map serialized a shooterSubMode field")
	}
}

func TestValidateEnumeratesMissingMarkers(t *testing.T) {
	m := New("empty", ModeRace)
	err := m.Validate()
	if err == nil {
		t.Fatal("empty race map validated")
	}
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("unexpected error type %T", err)
	}
	if len(verr.Missing) != 2 {
		t.Fatalf("missing = %v, want spawn and finish", verr.Missing)
	}
	msg := verr.Error()
	if !strings.Contains(msg, "spawn") || !strings.Contains(msg, "finish") {
		t.Fatalf("error does not name missing markers: %q", msg)
	}

	if err := testMap().Validate(); err != nil {
		t.Fatalf("complete map failed validation: %v", err)
	}
}

func TestValidateShooterSubModes(t *testing.T) {
	m := New("arena", ModeShooter)
	m.ShooterSubMode = SubModeDomination
	err := m.Validate()
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(verr.Missing) != 3 {
		t.Fatalf("domination map missing = %v", verr.Missing)
	}

	m.Markers = append(m.Markers,
		MapMarker{ID: "a", Type: MarkerSpawnA},
		MapMarker{ID: "b", Type: MarkerSpawnB},
		MapMarker{ID: "c", Type: MarkerCapturePoint},
	)
	if err := m.Validate(); err != nil {
		t.Fatalf("complete domination map failed validation: %v", err)
	}
}

func TestDefaultMapIsPlayable(t *testing.T) {
	for _, mode := range []Mode{ModeRace, ModeShooter} {
		m := DefaultMap(mode)
		if err := m.Validate(); err != nil {
			t.Fatalf("default %s map does not validate: %v", mode, err)
		}
		if _, ok := m.FirstMarker(MarkerSpawn); !ok {
			t.Fatalf("default %s map has no spawn", mode)
		}
	}
}

func TestSingletonTypesPerMode(t *testing.T) {
	race := New("r", ModeRace)
	if got := race.SingletonTypes(); len(got) != 2 {
		t.Fatalf("race singletons = %v", got)
	}

	ffa := New("f", ModeShooter)
	ffa.ShooterSubMode = SubModeFFA
	if got := ffa.SingletonTypes(); got != nil {
		t.Fatalf("ffa should have no singleton markers, got %v", got)
	}

	dom := New("d", ModeShooter)
	dom.ShooterSubMode = SubModeDomination
	if got := dom.SingletonTypes(); len(got) != 3 {
		t.Fatalf("domination singletons = %v", got)
	}
}

func TestSchemaGenerates(t *testing.T) {
	data, err := Schema()
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	if !strings.Contains(string(data), "shooterSubMode") {
		t.Fatal("schema does not describe the interchange fields")
	}
}
