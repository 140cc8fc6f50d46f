package camera

// CameraController defines an orbit-style camera control system with damping.
// Controllers own positional state (position, target). Input methods (Rotate, Pan, Zoom)
// accumulate pending motion which Update applies gradually, a damped fraction per frame.
// Camera reads from the controller and computes view/projection matrices.
type CameraController interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - [3]float32: world-space camera position
	Position() [3]float32

	// Target returns the look-at point.
	//
	// Returns:
	//   - [3]float32: world-space target position
	Target() [3]float32

	// SetTarget sets the look-at/pivot point and recomputes position from spherical coordinates.
	//
	// Parameters:
	//   - target: world-space coordinates
	SetTarget(target [3]float32)

	// Radius returns the current orbit radius (distance from target).
	//
	// Returns:
	//   - float32: current distance from target
	Radius() float32

	// SetRadius sets the orbit radius directly, clamped to min/max bounds.
	//
	// Parameters:
	//   - radius: new distance from target
	SetRadius(radius float32)

	// Azimuth returns the current horizontal angle around the Y axis in radians.
	Azimuth() float32

	// SetAzimuth sets the horizontal angle directly and recomputes position.
	SetAzimuth(azimuth float32)

	// Elevation returns the current vertical angle from the horizontal plane in radians.
	Elevation() float32

	// SetElevation sets the vertical angle directly, clamped to min/max bounds.
	SetElevation(elevation float32)

	// Rotate queues an orbit by a pointer drag. Deltas are in screen pixels and are scaled
	// by the mouse sensitivity.
	//
	// Parameters:
	//   - dx: horizontal drag distance
	//   - dy: vertical drag distance
	Rotate(dx, dy float32)

	// Pan queues a translation of both target and position along the camera's local right/up axes.
	// Deltas are in screen pixels and are scaled by the pan speed and the current radius.
	//
	// Parameters:
	//   - dx: horizontal drag distance
	//   - dy: vertical drag distance
	Pan(dx, dy float32)

	// Zoom queues a change of orbit radius. Positive delta zooms in.
	//
	// Parameters:
	//   - delta: zoom amount scaled by the zoom speed
	Zoom(delta float32)

	// Damping returns the fraction of pending motion applied per 60Hz frame.
	// A value of 1 disables damping.
	//
	// Returns:
	//   - float32: the damping factor in (0, 1]
	Damping() float32

	// SetDamping sets the damping factor. Values outside (0, 1] disable damping.
	//
	// Parameters:
	//   - factor: the damping factor
	SetDamping(factor float32)

	// Update applies a damped fraction of the pending motion and decays the remainder.
	//
	// Parameters:
	//   - dt: seconds since the previous update
	//
	// Returns:
	//   - bool: true if the camera moved
	Update(dt float32) bool
}
