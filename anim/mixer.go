package anim

import "github.com/gridlock-gg/gridlock/game"

// Mixer tracks the active clip and the crossfade into it. The renderer polls
// Current/FadeAlpha each frame to drive its blend weights.
type Mixer struct {
	current  string
	previous string
	fadeLeft float32
	clipTime float32
}

// NewMixer starts on the given clip with no fade in progress.
func NewMixer(initial string) *Mixer {
	return &Mixer{current: initial}
}

// Play switches to a clip with the standard crossfade. Playing the clip that
// is already active is a no-op so selection can run every frame without
// restarting the animation. Returns whether a transition started.
func (m *Mixer) Play(name string) bool {
	if name == m.current {
		return false
	}
	m.previous = m.current
	m.current = name
	m.fadeLeft = game.CrossfadeSeconds
	m.clipTime = 0
	return true
}

// Advance moves clip time and the crossfade forward.
func (m *Mixer) Advance(dt float32) {
	m.clipTime += dt
	if m.fadeLeft > 0 {
		m.fadeLeft -= dt
		if m.fadeLeft <= 0 {
			m.fadeLeft = 0
			m.previous = ""
		}
	}
}

// Current returns the active clip name.
func (m *Mixer) Current() string { return m.current }

// Previous returns the clip being faded out, or "" when no fade is running.
func (m *Mixer) Previous() string { return m.previous }

// FadeAlpha returns the blend weight of the current clip, rising from 0 to 1
// over the crossfade.
func (m *Mixer) FadeAlpha() float32 {
	if m.fadeLeft <= 0 {
		return 1
	}
	return 1 - m.fadeLeft/game.CrossfadeSeconds
}

// ClipTime returns seconds since the current clip started.
func (m *Mixer) ClipTime() float32 { return m.clipTime }

// Clamped reports whether a one-shot clip of the given duration has finished
// and should hold its last frame. Looping clips never clamp.
func (m *Mixer) Clamped(duration float32) bool {
	return OneShot(m.current) && m.clipTime >= duration
}
