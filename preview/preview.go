// Package preview renders a top-down orthographic PNG of a map: objects in
// their own colors, markers as fixed glyph colors. Used by the map API for
// listing thumbnails.
package preview

import (
	"bytes"

	"github.com/fogleman/gg"

	"github.com/gridlock-gg/gridlock/internal"
	"github.com/gridlock-gg/gridlock/mapdef"
)

const (
	padding      = 2.0 // world units around the content
	minExtent    = 10.0
	markerRadius = 0.6 // world units
)

var markerColors = map[mapdef.MarkerType]string{
	mapdef.MarkerSpawn:        "#4caf50",
	mapdef.MarkerSpawnA:       "#4caf50",
	mapdef.MarkerSpawnB:       "#2196f3",
	mapdef.MarkerCheckpoint:   "#ffc107",
	mapdef.MarkerFinish:       "#ffffff",
	mapdef.MarkerKillzone:     "#f44336",
	mapdef.MarkerCapturePoint: "#9c27b0",
}

// Render draws the map into a size x size PNG, viewed from above with +Z
// up the image.
func Render(m *mapdef.Map, size int) ([]byte, error) {
	minX, minZ, maxX, maxZ := bounds(m)

	dc := gg.NewContext(size, size)
	dc.SetHexColor("#1c1f26")
	dc.Clear()

	spanX := maxX - minX
	spanZ := maxZ - minZ
	span := spanX
	if spanZ > span {
		span = spanZ
	}
	scale := float64(size) / span
	// World to image: center the content, flip Z so north is up.
	toImage := func(x, z float32) (float64, float64) {
		ix := (float64(x) - (minX+maxX)/2) * scale
		iy := ((minZ+maxZ)/2 - float64(z)) * scale
		return ix + float64(size)/2, iy + float64(size)/2
	}

	for _, obj := range m.Objects {
		color := obj.Color
		if color == "" {
			color = "#9e9e9e"
		}
		dc.SetHexColor(color)
		cx, cy := toImage(obj.Position.X, obj.Position.Z)
		w := float64(obj.Scale.X) * scale
		h := float64(obj.Scale.Z) * scale
		switch obj.Type {
		case mapdef.ShapeCylinder, mapdef.ShapeSphere:
			dc.DrawCircle(cx, cy, w/2)
		default:
			dc.Push()
			dc.RotateAbout(-float64(obj.Rotation.Y), cx, cy)
			dc.DrawRectangle(cx-w/2, cy-h/2, w, h)
			dc.Pop()
		}
		dc.Fill()
	}

	for _, marker := range m.Markers {
		color, ok := markerColors[marker.Type]
		if !ok {
			continue
		}
		cx, cy := toImage(marker.Position.X, marker.Position.Z)
		dc.SetHexColor(color)
		dc.DrawCircle(cx, cy, markerRadius*scale)
		dc.Fill()
		dc.SetHexColor("#000000")
		dc.DrawCircle(cx, cy, markerRadius*scale)
		dc.Stroke()
	}

	buf := internal.BufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer internal.BufferPool.Put(buf)
	if err := dc.EncodePNG(buf); err != nil {
		return nil, err
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// bounds returns the world-space extent of the map content, padded, with a
// sane minimum for near-empty maps.
func bounds(m *mapdef.Map) (minX, minZ, maxX, maxZ float64) {
	minX, minZ = -minExtent, -minExtent
	maxX, maxZ = minExtent, minExtent
	grow := func(x, z, halfX, halfZ float64) {
		if x-halfX-padding < minX {
			minX = x - halfX - padding
		}
		if z-halfZ-padding < minZ {
			minZ = z - halfZ - padding
		}
		if x+halfX+padding > maxX {
			maxX = x + halfX + padding
		}
		if z+halfZ+padding > maxZ {
			maxZ = z + halfZ + padding
		}
	}
	for _, obj := range m.Objects {
		grow(float64(obj.Position.X), float64(obj.Position.Z), float64(obj.Scale.X)/2, float64(obj.Scale.Z)/2)
	}
	for _, marker := range m.Markers {
		grow(float64(marker.Position.X), float64(marker.Position.Z), markerRadius, markerRadius)
	}
	return minX, minZ, maxX, maxZ
}
