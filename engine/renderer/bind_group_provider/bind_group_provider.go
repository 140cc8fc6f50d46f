package bind_group_provider

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label used to name the GPU objects created for this provider.
	label string

	// The following fields are GPU allocated resources populated by the renderer backend.

	// bindGroup is the GPU bind group created for this provider, or nil if not initialized.
	bindGroup *wgpu.BindGroup
	// buffers holds the GPU buffers bound by this provider, keyed by binding index.
	buffers map[int]*wgpu.Buffer
	// textureViews holds the GPU texture views bound by this provider, keyed by binding index.
	textureViews map[int]*wgpu.TextureView
	// textures holds the textures behind owned views, released after the views.
	textures map[int]*wgpu.Texture
	// samplers holds the GPU samplers bound by this provider, keyed by binding index.
	samplers map[int]*wgpu.Sampler
	// shared marks bindings whose resource is owned by another provider and must not be released here.
	shared map[int]bool

	// vertexBuffer is the GPU vertex buffer created for this provider, or nil.
	vertexBuffer *wgpu.Buffer
	// indexBuffer is the GPU index buffer created for this provider, or nil for non-indexed geometry.
	indexBuffer *wgpu.Buffer
	// indexCount is the number of indices drawn by indexed draw calls.
	indexCount int
	// vertexCount is the number of vertices drawn by non-indexed draw calls.
	vertexCount int
	// version tags the uploaded contents so callers can detect stale geometry.
	version uint64
}

// BindGroupProvider describes the GPU resources one draw needs for a single bind group slot,
// or the vertex and index buffers of one piece of geometry. The renderer creates the
// resources through its backend and stores them on the provider; draw calls read them back.
//
// A resource set with one of the Share methods is owned elsewhere: Release skips it, and
// the owning provider must outlive every bind group that references it.
type BindGroupProvider interface {
	// Release releases the GPU resources owned by this provider.
	Release()

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// BindGroup returns the created bind group, or nil if it has not been initialized.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group or nil
	BindGroup() *wgpu.BindGroup

	// Buffer returns the buffer for a binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer(binding int) *wgpu.Buffer

	// TextureView returns the texture view for a binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.TextureView: the texture view or nil
	TextureView(binding int) *wgpu.TextureView

	// Sampler returns the sampler for a binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Sampler: the sampler or nil
	Sampler(binding int) *wgpu.Sampler

	// Shared reports whether the resource at a binding is owned by another provider.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - bool: true if the binding was set through a Share method
	Shared(binding int) bool

	VertexBuffer() *wgpu.Buffer
	IndexBuffer() *wgpu.Buffer
	IndexCount() int
	VertexCount() int

	// Version returns the version tag of the uploaded geometry.
	Version() uint64

	// SetBindGroup replaces the bind group, releasing the previous one.
	//
	// Parameters:
	//   - bg: the created bind group
	SetBindGroup(bg *wgpu.BindGroup)

	// SetBuffer stores an owned buffer for a binding, releasing any previously owned one.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the created buffer
	SetBuffer(binding int, buf *wgpu.Buffer)

	// SetTexture stores an owned texture and its view for a binding, releasing any previously owned pair.
	//
	// Parameters:
	//   - binding: the binding index
	//   - tex: the texture, may be nil when only the view is owned
	//   - tv: the texture view to bind
	SetTexture(binding int, tex *wgpu.Texture, tv *wgpu.TextureView)

	// SetSampler stores an owned sampler for a binding, releasing any previously owned one.
	//
	// Parameters:
	//   - binding: the binding index
	//   - s: the sampler to store
	SetSampler(binding int, s *wgpu.Sampler)

	// ShareBuffer binds a buffer owned by another provider.
	ShareBuffer(binding int, buf *wgpu.Buffer)

	// ShareTextureView binds a texture view owned by another provider.
	ShareTextureView(binding int, tv *wgpu.TextureView)

	// SetVertexBuffer replaces the vertex buffer, releasing the previous one.
	SetVertexBuffer(buf *wgpu.Buffer)

	// SetIndexBuffer replaces the index buffer, releasing the previous one.
	SetIndexBuffer(buf *wgpu.Buffer)

	SetIndexCount(count int)
	SetVertexCount(count int)
	SetVersion(version uint64)
}

// Compile-time check that bindGroupProvider implements BindGroupProvider
var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a new BindGroupProvider with the provided options.
//
// Parameters:
//   - label: a debug label used to name the GPU objects created for the provider
//   - options: a variadic list of options to configure the provider
//
// Returns:
//   - BindGroupProvider: a new instance of BindGroupProvider configured with the provided options
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:        label,
		buffers:      make(map[int]*wgpu.Buffer),
		textureViews: make(map[int]*wgpu.TextureView),
		textures:     make(map[int]*wgpu.Texture),
		samplers:     make(map[int]*wgpu.Sampler),
		shared:       make(map[int]bool),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) TextureView(binding int) *wgpu.TextureView {
	return p.textureViews[binding]
}

func (p *bindGroupProvider) Sampler(binding int) *wgpu.Sampler {
	return p.samplers[binding]
}

func (p *bindGroupProvider) Shared(binding int) bool {
	return p.shared[binding]
}

func (p *bindGroupProvider) VertexBuffer() *wgpu.Buffer {
	return p.vertexBuffer
}

func (p *bindGroupProvider) IndexBuffer() *wgpu.Buffer {
	return p.indexBuffer
}

func (p *bindGroupProvider) IndexCount() int {
	return p.indexCount
}

func (p *bindGroupProvider) VertexCount() int {
	return p.vertexCount
}

func (p *bindGroupProvider) Version() uint64 {
	return p.version
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	if p.bindGroup != nil && p.bindGroup != bg {
		p.bindGroup.Release()
	}
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	if old := p.buffers[binding]; old != nil && old != buf && !p.shared[binding] {
		old.Release()
	}
	p.buffers[binding] = buf
	delete(p.shared, binding)
}

func (p *bindGroupProvider) SetTexture(binding int, tex *wgpu.Texture, tv *wgpu.TextureView) {
	p.releaseTexture(binding)
	p.textures[binding] = tex
	p.textureViews[binding] = tv
	delete(p.shared, binding)
}

// releaseTexture releases the owned view and texture at binding, if any.
func (p *bindGroupProvider) releaseTexture(binding int) {
	if p.shared[binding] {
		return
	}
	if tv := p.textureViews[binding]; tv != nil {
		tv.Release()
	}
	if tex := p.textures[binding]; tex != nil {
		tex.Release()
	}
	delete(p.textures, binding)
}

func (p *bindGroupProvider) SetSampler(binding int, s *wgpu.Sampler) {
	if old := p.samplers[binding]; old != nil && old != s && !p.shared[binding] {
		old.Release()
	}
	p.samplers[binding] = s
	delete(p.shared, binding)
}

func (p *bindGroupProvider) ShareBuffer(binding int, buf *wgpu.Buffer) {
	if old := p.buffers[binding]; old != nil && old != buf && !p.shared[binding] {
		old.Release()
	}
	p.buffers[binding] = buf
	p.shared[binding] = true
}

func (p *bindGroupProvider) ShareTextureView(binding int, tv *wgpu.TextureView) {
	if p.textureViews[binding] != tv {
		p.releaseTexture(binding)
	}
	p.textureViews[binding] = tv
	p.shared[binding] = true
}

func (p *bindGroupProvider) SetVertexBuffer(buf *wgpu.Buffer) {
	if p.vertexBuffer != nil && p.vertexBuffer != buf {
		p.vertexBuffer.Release()
	}
	p.vertexBuffer = buf
}

func (p *bindGroupProvider) SetIndexBuffer(buf *wgpu.Buffer) {
	if p.indexBuffer != nil && p.indexBuffer != buf {
		p.indexBuffer.Release()
	}
	p.indexBuffer = buf
}

func (p *bindGroupProvider) SetIndexCount(count int) {
	p.indexCount = count
}

func (p *bindGroupProvider) SetVertexCount(count int) {
	p.vertexCount = count
}

func (p *bindGroupProvider) SetVersion(version uint64) {
	p.version = version
}

func (p *bindGroupProvider) Release() {
	// the bind group references the other resources, so it goes first
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	for i := range p.textureViews {
		p.releaseTexture(i)
		delete(p.textureViews, i)
	}
	for i, s := range p.samplers {
		if s != nil && !p.shared[i] {
			s.Release()
		}
		delete(p.samplers, i)
	}
	for i, buf := range p.buffers {
		if buf != nil && !p.shared[i] {
			buf.Release()
		}
		delete(p.buffers, i)
	}
	clear(p.shared)

	if p.vertexBuffer != nil {
		p.vertexBuffer.Release()
		p.vertexBuffer = nil
	}
	if p.indexBuffer != nil {
		p.indexBuffer.Release()
		p.indexBuffer = nil
	}
	p.indexCount = 0
	p.vertexCount = 0
}
