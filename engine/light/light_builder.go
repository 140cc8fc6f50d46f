package light

// lightConfig collects construction options before the kind-specific light is built.
type lightConfig struct {
	color        [3]float32
	intensity    float32
	position     [3]float32
	target       [3]float32
	castsShadows bool
	angle        float32
	penumbra     float32
	lightRange   float32
}

// LightBuilderOption is a function that configures a Light during construction.
type LightBuilderOption func(*lightConfig)

// WithColor sets the RGB color of the light.
//
// Parameters:
//   - color: color as (r, g, b)
//
// Returns:
//   - LightBuilderOption: a function that applies the color option
func WithColor(color [3]float32) LightBuilderOption {
	return func(c *lightConfig) {
		c.color = color
	}
}

// WithIntensity sets the scalar intensity multiplier.
//
// Parameters:
//   - intensity: the intensity value
//
// Returns:
//   - LightBuilderOption: a function that applies the intensity option
func WithIntensity(intensity float32) LightBuilderOption {
	return func(c *lightConfig) {
		c.intensity = intensity
	}
}

// WithPosition sets the world-space position. Ignored for ambient lights.
//
// Parameters:
//   - position: position as (x, y, z)
//
// Returns:
//   - LightBuilderOption: a function that applies the position option
func WithPosition(position [3]float32) LightBuilderOption {
	return func(c *lightConfig) {
		c.position = position
	}
}

// WithTarget sets the world-space aim point. Used by directional and spot lights.
func WithTarget(target [3]float32) LightBuilderOption {
	return func(c *lightConfig) {
		c.target = target
	}
}

// WithCastsShadows enables shadow map generation. Used by directional and spot lights.
func WithCastsShadows(castsShadows bool) LightBuilderOption {
	return func(c *lightConfig) {
		c.castsShadows = castsShadows
	}
}

// WithCone sets the spot cone half-angle in radians and the penumbra fraction.
//
// Parameters:
//   - angle: cone half-angle in radians
//   - penumbra: attenuated fraction at the cone edge, clamped to [0, 1]
//
// Returns:
//   - LightBuilderOption: a function that applies the cone option
func WithCone(angle, penumbra float32) LightBuilderOption {
	return func(c *lightConfig) {
		c.angle = angle
		c.penumbra = penumbra
	}
}

// WithRange sets the attenuation cutoff distance for point and spot lights. Zero means unlimited.
func WithRange(lightRange float32) LightBuilderOption {
	return func(c *lightConfig) {
		c.lightRange = lightRange
	}
}
