package camera

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithRadius sets the starting orbit distance. It is clamped to the radius bounds.
func WithRadius(radius float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.radius = radius
	}
}

// WithAzimuth sets the starting angle around +Y in radians, 0 looking down -Z from +Z.
func WithAzimuth(azimuth float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.azimuth = azimuth
	}
}

// WithElevation sets the starting angle above the ground plane in radians. It is clamped
// just short of the poles.
func WithElevation(elevation float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.elevation = elevation
	}
}

// WithTarget sets the point the camera orbits.
func WithTarget(target [3]float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.target = target
	}
}

// WithRadiusBounds limits how far Zoom can move the camera. The pair is ignored unless
// 0 < min <= max.
//
// Parameters:
//   - min: closest orbit distance
//   - max: farthest orbit distance
//
// Returns:
//   - CameraControllerOption: option function to apply
func WithRadiusBounds(min, max float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		if min > 0 && max >= min {
			cc.minRadius = min
			cc.maxRadius = max
		}
	}
}

// WithMouseSensitivity sets the radians Rotate turns per pixel of drag.
func WithMouseSensitivity(sensitivity float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.mouseSensitivity = sensitivity
	}
}

// WithZoomSpeed sets the distance Zoom moves per wheel step.
func WithZoomSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.zoomSpeed = speed
	}
}

// WithPanSpeed sets the pan distance per pixel, scaled by the orbit radius.
func WithPanSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.panSpeed = speed
	}
}

// WithDamping sets the fraction of pending motion applied per 60Hz frame.
// Values outside (0, 1] disable damping.
//
// Parameters:
//   - factor: the damping factor
//
// Returns:
//   - CameraControllerOption: option function to apply
func WithDamping(factor float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		if factor <= 0 || factor > 1 {
			factor = 1
		}
		cc.damping = factor
	}
}
