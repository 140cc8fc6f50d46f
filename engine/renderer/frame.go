package renderer

import (
	"github.com/Carmen-Shannon/oxy-lightlab/engine/environment"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/light"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/model"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// Frame is an immutable snapshot of everything drawn in one frame. The scene builds it
// under its own lock so the renderer never reads live entities.
type Frame struct {
	// ViewProjection and InverseViewProjection come from the camera.
	ViewProjection        mgl32.Mat4
	InverseViewProjection mgl32.Mat4
	CameraPosition        [3]float32

	// Lights are the packed non-ambient lights, at most light.MaxGPULights.
	Lights []light.GPULight
	// Ambient is the summed ambient term.
	Ambient [3]float32

	// ShadowViewProjection is the view-projection of the first shadow casting light in Lights.
	// It is ignored when HasShadowCaster is false.
	ShadowViewProjection mgl32.Mat4
	HasShadowCaster      bool

	Items   []DrawItem
	Helpers []HelperItem

	// Background is drawn behind the scene; Environment lights it. Either may be nil.
	Background  *environment.Map
	Environment *environment.Map
}

// DrawItem is one model drawn with a transform.
type DrawItem struct {
	Model       model.Model
	ModelMatrix mgl32.Mat4
	// Materials is indexed by each mesh's MaterialIndex. The last entry is the fallback for
	// meshes whose index is -1 or out of range.
	Materials []material.GPUMaterialParams
}

// HelperItem is one set of helper lines. ID keys the GPU line buffer across frames and
// Version tells the renderer when the buffer has to be re-uploaded.
type HelperItem struct {
	ID       string
	Segments []light.Segment
	Color    [3]float32
	Version  uint64
}

// MaterialFor resolves the material used for a mesh.
//
// Parameters:
//   - index: the mesh's MaterialIndex
//
// Returns:
//   - material.GPUMaterialParams: the material, or the default white material if the item has none
func (d DrawItem) MaterialFor(index int) material.GPUMaterialParams {
	n := len(d.Materials)
	if n == 0 {
		return material.GPUMaterialParams{BaseColor: [4]float32{1, 1, 1, 1}, Roughness: 1}
	}
	if index >= 0 && index < n-1 {
		return d.Materials[index]
	}
	return d.Materials[n-1]
}
