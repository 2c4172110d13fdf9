package sim

// Input is one frame's worth of player intent, already translated from raw
// key and pointer state by the host. Edge detection against the previous
// frame happens inside the controller, so held keys are reported as held.
type Input struct {
	Forward, Back, Left, Right bool

	Run   bool
	Jump  bool
	Dash  bool
	Sit   bool
	Crawl bool

	Aim    bool
	Fire   bool
	Reload bool

	// Yaw is the camera yaw the movement vector is expressed relative to.
	// Pitch only matters to aiming consumers.
	Yaw   float32
	Pitch float32
}

// moveAxes returns the local-space movement input: x is strafe (right
// positive), z is forward.
func (in Input) moveAxes() (x, z float32) {
	if in.Forward {
		z++
	}
	if in.Back {
		z--
	}
	if in.Right {
		x++
	}
	if in.Left {
		x--
	}
	return x, z
}
