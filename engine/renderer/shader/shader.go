package shader

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies the pipeline stage a shader is used for.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex shader type, used for vertex processing in render pipelines.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment shader type, used for fragment processing in pair with a vertex shader.
	ShaderTypeFragment
)

// shader is the implementation of the Shader interface.
// It holds all of the persistent shader data required for pipeline creation.
type shader struct {
	key                        string
	source                     string
	shaderType                 ShaderType
	entryPoint                 string
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	vertexLayouts              []wgpu.VertexBufferLayout
	bindings                   []Binding
}

// Shader defines the interface for a pre-processed WGSL shader stage. It exposes the shader's
// unique key, source code, entry point, bind group layout descriptors and vertex buffer layouts
// needed for pipeline creation.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for labels and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the pre-processed WGSL shader source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// ShaderType returns the stage this shader is used for.
	ShaderType() ShaderType

	// EntryPoint returns the entry point name parsed from the source.
	//
	// Returns:
	//   - string: the entry point name (e.g. "vs_main")
	EntryPoint() string

	// BindGroupLayoutDescriptors retrieves the bind group layouts the shader is used with.
	// Layouts may declare more entries than the shader reads; every binding the shader
	// declares must be present.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// VertexLayouts retrieves the vertex buffer layouts for a vertex shader.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the layouts in buffer slot order, nil for fragment shaders
	VertexLayouts() []wgpu.VertexBufferLayout

	// Bindings lists the @group/@binding pairs declared in the source.
	//
	// Returns:
	//   - []Binding: the declared bindings in source order
	Bindings() []Binding

	// Module returns a shader module descriptor for the source.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the descriptor containing the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor
}

var _ Shader = &shader{}

// NewShader pre-processes source and creates a Shader with the given options applied.
// It panics if the source cannot be pre-processed or has no entry point for the stage,
// since shader sources are embedded in the binary.
//
// Parameters:
//   - key: a unique identifier for the shader, used for labels
//   - shaderType: the stage the shader is used for
//   - source: the raw WGSL source
//   - options: functional options to configure layouts
//
// Returns:
//   - Shader: a new Shader instance with the provided configuration
func NewShader(key string, shaderType ShaderType, source string, options ...ShaderBuilderOption) Shader {
	processed, err := NewPreProcessor().Process(source)
	if err != nil {
		panic(fmt.Sprintf("shader: failed to pre-process %s: %v", key, err))
	}

	s := &shader{
		key:                        key,
		source:                     processed,
		shaderType:                 shaderType,
		entryPoint:                 parseEntryPoint(processed, shaderType),
		bindGroupLayoutDescriptors: make(map[int]wgpu.BindGroupLayoutDescriptor),
		bindings:                   parseBindings(processed),
	}
	if s.entryPoint == "" {
		panic(fmt.Sprintf("shader: %s has no entry point for its stage", key))
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) VertexLayouts() []wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) Bindings() []Binding {
	return s.bindings
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return &wgpu.ShaderModuleDescriptor{
		Label: s.key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.source,
		},
	}
}
