// Package sim runs the per-frame character simulation: posture and collider
// management, ground detection, the local player state machine and its
// trigger zone evaluation.
package sim

import (
	"github.com/gridlock-gg/gridlock/phys"
)

// Posture is the character's stance. It decides capsule size and the
// vertical offset between the body center and the feet.
type Posture uint8

const (
	PostureStanding Posture = iota
	PostureSitting
	PostureCrawling
)

func (p Posture) String() string {
	switch p {
	case PostureSitting:
		return "sitting"
	case PostureCrawling:
		return "crawling"
	}
	return "standing"
}

type postureDims struct {
	halfHeight   float32
	radius       float32
	centerOffset float32
}

// centerOffset is always halfHeight + radius: the distance from the capsule
// center down to the lowest point of the bottom cap.
var postureTable = [...]postureDims{
	PostureStanding: {halfHeight: 0.55, radius: 0.35, centerOffset: 0.9},
	PostureSitting:  {halfHeight: 0.3, radius: 0.35, centerOffset: 0.65},
	PostureCrawling: {halfHeight: 0.05, radius: 0.3, centerOffset: 0.35},
}

// CenterOffset returns the body-center to foot distance for a posture.
func CenterOffset(p Posture) float32 {
	return postureTable[p].centerOffset
}

// CapsuleFor returns the capsule descriptor for a posture.
func CapsuleFor(p Posture) phys.ColliderDesc {
	d := postureTable[p]
	return phys.CapsuleDesc(d.halfHeight, d.radius)
}
