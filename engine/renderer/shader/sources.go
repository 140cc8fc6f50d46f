package shader

import _ "embed"

var (
	//go:embed sources/frame.wgsl
	frameSource string

	//go:embed sources/envmap.wgsl
	envmapSource string

	//go:embed sources/tonemap.wgsl
	tonemapSource string

	// LitSource is the physically based surface shader (vs_main / fs_main).
	//go:embed sources/lit.wgsl
	LitSource string

	// SkySource draws the equirectangular background behind the scene.
	//go:embed sources/sky.wgsl
	SkySource string

	// LineSource draws colored line lists such as light helpers.
	//go:embed sources/line.wgsl
	LineSource string

	// ShadowSource is the depth-only vertex shader used for the shadow map pass.
	//go:embed sources/shadow.wgsl
	ShadowSource string
)
