// Package anim picks canonical animation clip names from simulation state
// and runs the crossfade bookkeeping the renderer drives its mixer with.
// Selection is a pure function; the renderer owns the actual clips.
package anim

import "github.com/chewxy/math32"

// Race set clip names.
const (
	Idle      = "Idle"
	Walk      = "Walk"
	Run       = "Run"
	SitPose   = "SitPose"
	SitWalk   = "SitWalk"
	CrawlPose = "CrawlPose"
	Crawl     = "Crawl"
	Roll      = "Roll"
	Jump      = "Jump"
	Dead      = "Dead"
)

// Gun set extras. Locomotion names are built from a Walk/Run prefix and a
// direction suffix, e.g. RunForwardLeft.
const (
	Reload  = "Reload"
	Fire    = "Fire"
	AimPose = "AimPose"
)

// Direction buckets local movement input into eight compass directions
// relative to the character's facing.
type Direction uint8

const (
	DirNone Direction = iota
	DirForward
	DirForwardRight
	DirRight
	DirBackRight
	DirBack
	DirBackLeft
	DirLeft
	DirForwardLeft
)

var directionSuffix = [...]string{
	DirNone:         "",
	DirForward:      "Forward",
	DirForwardRight: "ForwardRight",
	DirRight:        "Right",
	DirBackRight:    "BackRight",
	DirBack:         "Back",
	DirBackLeft:     "BackLeft",
	DirLeft:         "Left",
	DirForwardLeft:  "ForwardLeft",
}

// DirectionFor buckets a local-space movement vector (x right, z forward)
// into one of the eight compass directions. Near-zero input is DirNone.
func DirectionFor(x, z float32) Direction {
	if math32.Abs(x) < 1e-4 && math32.Abs(z) < 1e-4 {
		return DirNone
	}
	// Octant selection: 45 degree slices centered on each direction.
	angle := math32.Atan2(x, z)
	octant := int(math32.Round(angle/(math32.Pi/4))) & 7
	switch octant {
	case 0:
		return DirForward
	case 1:
		return DirForwardRight
	case 2:
		return DirRight
	case 3:
		return DirBackRight
	case 4:
		return DirBack
	case 5:
		return DirBackLeft
	case 6:
		return DirLeft
	default:
		return DirForwardLeft
	}
}

// Set selects which clip vocabulary is in play.
type Set uint8

const (
	SetRace Set = iota
	SetGun
)

// Params is everything selection looks at for one frame.
type Params struct {
	Set       Set
	Direction Direction
	Running   bool
	Sitting   bool
	Crawling  bool
	Grounded  bool
	Jumping   bool
	Dashing   bool
	Dying     bool

	// Gun set only.
	Aiming    bool
	Firing    bool
	Reloading bool
}

// Select maps one frame of simulation state to a clip name.
func Select(p Params) string {
	if p.Dying {
		return Dead
	}
	if p.Jumping || !p.Grounded {
		return Jump
	}
	if p.Dashing {
		return Roll
	}
	moving := p.Direction != DirNone
	if p.Set == SetGun {
		if !moving {
			switch {
			case p.Reloading:
				return Reload
			case p.Firing:
				return Fire
			case p.Aiming:
				return AimPose
			}
			return Idle
		}
		prefix := Walk
		if p.Running {
			prefix = Run
		}
		return prefix + directionSuffix[p.Direction]
	}
	switch {
	case p.Crawling && moving:
		return Crawl
	case p.Crawling:
		return CrawlPose
	case p.Sitting && moving:
		return SitWalk
	case p.Sitting:
		return SitPose
	case moving && p.Running:
		return Run
	case moving:
		return Walk
	}
	return Idle
}

// SelectUpper picks the layered upper-body clip for the gun set, drawn over
// the locomotion clip through an UpperBodyMask so reloading and firing keep
// working while the legs move. Empty means no overlay.
func SelectUpper(p Params) string {
	if p.Set != SetGun || p.Dying {
		return ""
	}
	switch {
	case p.Reloading:
		return Reload
	case p.Firing:
		return Fire
	case p.Aiming:
		return AimPose
	}
	return ""
}

// oneShot clips play once and clamp on their last frame instead of looping.
var oneShot = map[string]bool{
	Jump:   true,
	Roll:   true,
	Reload: true,
	Dead:   true,
	Fire:   true,
}

// OneShot reports whether a clip clamps at its end rather than looping.
func OneShot(name string) bool { return oneShot[name] }

// UpperBodyMask is the per-skeleton set of bones a layered upper-body clip
// is allowed to drive. Skeletons differ, so the list is configuration, not
// a constant.
type UpperBodyMask struct {
	bones map[string]bool
}

// NewUpperBodyMask builds a mask from a bone-name allowlist.
func NewUpperBodyMask(bones []string) UpperBodyMask {
	m := UpperBodyMask{bones: make(map[string]bool, len(bones))}
	for _, b := range bones {
		m.bones[b] = true
	}
	return m
}

// Allows reports whether the layered clip may drive the named bone.
func (m UpperBodyMask) Allows(bone string) bool { return m.bones[bone] }

// ArmsRemap maps body clip names to their first-person arms equivalents.
// Clips without an entry keep their own name.
type ArmsRemap map[string]string

// For returns the arms clip name for a body clip.
func (r ArmsRemap) For(body string) string {
	if arms, ok := r[body]; ok {
		return arms
	}
	return body
}
