package preview

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/gridlock-gg/gridlock/mapdef"
)

func TestRenderProducesPNG(t *testing.T) {
	m := mapdef.DefaultMap(mapdef.ModeRace)
	m.Objects = append(m.Objects, mapdef.MapObject{
		ID: "crate", Type: mapdef.ShapeBox,
		Position: mapdef.Vec3{X: 3, Z: 5},
		Scale:    mapdef.Vec3{X: 2, Y: 1, Z: 2},
		Color:    "#ff0000",
	})

	data, err := Render(m, 256)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 256 || b.Dy() != 256 {
		t.Fatalf("image size = %v", b)
	}
}

func TestRenderEmptyMap(t *testing.T) {
	m := mapdef.New("blank", mapdef.ModeRace)
	if _, err := Render(m, 64); err != nil {
		t.Fatalf("empty map: %v", err)
	}
}
