package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-lightlab/common"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/environment"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/light"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/model"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// SurfaceSource supplies the platform surface the wgpu backend presents to.
type SurfaceSource interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend

	pipelineCache map[string]pipeline.Pipeline

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	msaa                 MSAASampleCount

	// Settings written from any goroutine, read by Render.
	width, height     int
	pixelRatio        float32
	surfaceDirty      bool
	presentMode       PresentMode
	settings          frameSettings
	shadowMapSize     int
	initialized       bool
	released          bool
	boundBG, boundEnv *environment.Map

	// GPU caches owned by the render goroutine.
	frameProvider       bind_group_provider.BindGroupProvider
	shadowFrameProvider bind_group_provider.BindGroupProvider
	placeholder         bind_group_provider.BindGroupProvider
	envTextures         map[*environment.Map]bind_group_provider.BindGroupProvider
	meshes              map[uint64][]bind_group_provider.BindGroupProvider
	objectSlots         []bind_group_provider.BindGroupProvider
	helperLines         map[string]bind_group_provider.BindGroupProvider
}

// Renderer draws Frame snapshots. Settings may be changed from any goroutine; Render and
// Release must be called from the goroutine that owns the surface.
type Renderer interface {
	// Resize records a new logical surface size. The swapchain is reconfigured on the next
	// Render at the logical size times the pixel ratio.
	//
	// Parameters:
	//   - width: the logical width
	//   - height: the logical height
	Resize(width, height int)

	// Size returns the last logical size passed to Resize.
	Size() (width, height int)

	// SetPixelRatio sets the ratio of framebuffer pixels to logical units. Non-positive values are ignored.
	SetPixelRatio(ratio float32)

	// PixelRatio returns the current pixel ratio.
	PixelRatio() float32

	SetShadowMode(mode ShadowMode)
	ShadowMode() ShadowMode
	SetToneMapping(tm ToneMapping)
	ToneMapping() ToneMapping

	// SetExposure sets the exposure multiplier applied before tone mapping. Negative values clamp to 0.
	SetExposure(exposure float32)
	Exposure() float32

	// SetPresentMode changes the present mode; it takes effect on the next Render.
	SetPresentMode(mode PresentMode)

	// Render draws one frame. A zero-sized surface skips the frame without error.
	//
	// Parameters:
	//   - frame: the snapshot to draw
	//
	// Returns:
	//   - error: an error if GPU resources could not be created or the surface could not be acquired
	Render(frame *Frame) error

	// Release frees every GPU resource. The renderer must not be used afterwards.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer. Unless a backend is injected with WithBackend, the wgpu
// backend is created on the surface; GPU pipelines are created on the first Render.
//
// Parameters:
//   - backendType: the GPU backend to create
//   - surface: the surface to present to, unused when a backend is injected
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the renderer
func NewRenderer(backendType RendererBackendType, surface SurfaceSource, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		backendType:   backendType,
		pipelineCache: make(map[string]pipeline.Pipeline),
		msaa:          MSAA4x,
		pixelRatio:    1,
		presentMode:   PresentModeVSync,
		shadowMapSize: light.ShadowMapResolution,
		settings: frameSettings{
			shadowMode:  ShadowModePCF,
			toneMapping: ToneMappingACESFilmic,
			exposure:    1,
		},
		envTextures: make(map[*environment.Map]bind_group_provider.BindGroupProvider),
		meshes:      make(map[uint64][]bind_group_provider.BindGroupProvider),
		helperLines: make(map[string]bind_group_provider.BindGroupProvider),
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	if r.backend == nil {
		if surface == nil {
			panic("renderer: a surface is required without an injected backend")
		}
		switch backendType {
		case BackendTypeWGPU:
			fallthrough
		default:
			r.backend = newWGPURendererBackend(surface.SurfaceDescriptor(), r.forceFallbackAdapter, r.msaa)
		}
	}
	r.backend.SetPresentMode(r.presentMode)
	return r
}

func (r *renderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if width == r.width && height == r.height {
		return
	}
	r.width, r.height = max(width, 0), max(height, 0)
	r.surfaceDirty = true
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) SetPixelRatio(ratio float32) {
	if ratio <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if ratio != r.pixelRatio {
		r.pixelRatio = ratio
		r.surfaceDirty = true
	}
}

func (r *renderer) PixelRatio() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pixelRatio
}

func (r *renderer) SetShadowMode(mode ShadowMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings.shadowMode = mode
}

func (r *renderer) ShadowMode() ShadowMode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings.shadowMode
}

func (r *renderer) SetToneMapping(tm ToneMapping) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings.toneMapping = tm
}

func (r *renderer) ToneMapping() ToneMapping {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings.toneMapping
}

func (r *renderer) SetExposure(exposure float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings.exposure = max(exposure, 0)
}

func (r *renderer) Exposure() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings.exposure
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if mode != r.presentMode {
		r.presentMode = mode
		r.surfaceDirty = true
	}
}

func (r *renderer) Render(frame *Frame) error {
	r.mu.Lock()
	if r.released {
		r.mu.Unlock()
		return fmt.Errorf("renderer has been released")
	}
	settings := r.settings
	pw := int(float32(r.width) * r.pixelRatio)
	ph := int(float32(r.height) * r.pixelRatio)
	reconfigure := r.surfaceDirty
	r.surfaceDirty = false
	presentMode := r.presentMode
	r.mu.Unlock()

	if pw <= 0 || ph <= 0 {
		return nil
	}
	if reconfigure {
		r.backend.SetPresentMode(presentMode)
		r.backend.ConfigureSurface(pw, ph)
	}
	if err := r.ensureInitialized(); err != nil {
		return err
	}
	if err := r.bindEnvironment(frame); err != nil {
		return err
	}

	lights, found := selectShadowCaster(frame.Lights)
	shadowEnabled := settings.shadowMode != ShadowModeOff && frame.HasShadowCaster && found

	writes := []bind_group_provider.BufferWrite{
		{Provider: r.frameProvider, Binding: bindingFrame, Data: marshalFrameUniform(frame, settings, shadowEnabled)},
		{Provider: r.frameProvider, Binding: bindingLights, Data: light.MarshalLightArray(lights)},
	}

	draws, objectWrites, err := r.prepareDraws(frame.Items)
	if err != nil {
		return err
	}
	writes = append(writes, objectWrites...)

	lines, err := r.prepareHelpers(frame.Helpers)
	if err != nil {
		return err
	}

	r.backend.WriteBuffers(writes)

	if shadowEnabled {
		if err := r.backend.BeginShadowPass(r.frameProvider, bindingShadowMap); err != nil {
			return fmt.Errorf("failed to begin shadow pass: %w", err)
		}
		shadow := r.pipelineCache[pipelineShadow]
		for _, d := range draws {
			r.backend.ShadowDrawCall(shadow, d.mesh, []bind_group_provider.BindGroupProvider{r.shadowFrameProvider, d.object})
		}
		r.backend.EndShadowPass()
	}

	if err := r.backend.BeginFrame(); err != nil {
		return fmt.Errorf("failed to begin frame: %w", err)
	}
	frameGroups := []bind_group_provider.BindGroupProvider{r.frameProvider}
	if frame.Background != nil {
		r.backend.DrawFullscreen(r.pipelineCache[pipelineSky], frameGroups)
	}
	lit := r.pipelineCache[pipelineLit]
	for _, d := range draws {
		r.backend.DrawCall(lit, d.mesh, []bind_group_provider.BindGroupProvider{r.frameProvider, d.object})
	}
	linePipeline := r.pipelineCache[pipelineLines]
	for _, l := range lines {
		r.backend.DrawLines(linePipeline, l, frameGroups)
	}
	r.backend.EndFrame()
	r.backend.Present()
	return nil
}

func (r *renderer) Release() {
	r.mu.Lock()
	if r.released {
		r.mu.Unlock()
		return
	}
	r.released = true
	r.mu.Unlock()

	for _, slot := range r.objectSlots {
		slot.Release()
	}
	r.objectSlots = nil
	for id, meshes := range r.meshes {
		for _, m := range meshes {
			m.Release()
		}
		delete(r.meshes, id)
	}
	for id, l := range r.helperLines {
		l.Release()
		delete(r.helperLines, id)
	}
	// bind groups that share textures go before the textures' owners
	for _, p := range []bind_group_provider.BindGroupProvider{r.shadowFrameProvider, r.frameProvider} {
		if p != nil {
			p.Release()
		}
	}
	for m, tex := range r.envTextures {
		tex.Release()
		delete(r.envTextures, m)
	}
	if r.placeholder != nil {
		r.placeholder.Release()
	}
	for _, p := range r.pipelineCache {
		p.Release()
	}
	r.backend.Release()
}

// ensureInitialized creates the pipelines and frame resources on first use.
func (r *renderer) ensureInitialized() error {
	if r.initialized {
		return nil
	}
	if len(r.pipelineCache) == 0 {
		r.pipelineCache = builtinPipelines()
	}
	for _, key := range []string{pipelineLit, pipelineSky, pipelineLines, pipelineShadow} {
		p, ok := r.pipelineCache[key]
		if !ok {
			return fmt.Errorf("pipeline %q is not configured", key)
		}
		var err error
		if p.Type() == pipeline.PipelineTypeShadow {
			err = r.backend.RegisterShadowPipeline(p)
		} else {
			err = r.backend.RegisterRenderPipeline(p)
		}
		if err != nil {
			return fmt.Errorf("failed to register %s pipeline: %w", key, err)
		}
	}

	r.placeholder = bind_group_provider.NewBindGroupProvider("Placeholder Environment")
	if err := r.backend.InitTextureView(r.placeholder, 0, common.TextureStagingData{
		Pixels: []byte{0, 0, 0, 255},
		Width:  1,
		Height: 1,
	}); err != nil {
		return fmt.Errorf("failed to create placeholder texture: %w", err)
	}

	r.frameProvider = bind_group_provider.NewBindGroupProvider("Frame")
	if err := r.backend.InitDepthTexture(r.frameProvider, bindingShadowMap, r.shadowMapSize); err != nil {
		return fmt.Errorf("failed to create shadow map: %w", err)
	}
	if err := r.backend.InitSampler(r.frameProvider, bindingShadowSampler, common.SamplerStagingData{
		AddressModeU: wgpu.AddressModeClampToEdge,
		AddressModeV: wgpu.AddressModeClampToEdge,
		AddressModeW: wgpu.AddressModeClampToEdge,
		MipmapFilter: wgpu.MipmapFilterModeNearest,
		Compare:      wgpu.CompareFunctionLessEqual,
	}); err != nil {
		return fmt.Errorf("failed to create shadow sampler: %w", err)
	}
	if err := r.backend.InitSampler(r.frameProvider, bindingEnvSampler, common.SamplerStagingData{
		AddressModeU: wgpu.AddressModeRepeat,
		AddressModeV: wgpu.AddressModeClampToEdge,
	}); err != nil {
		return fmt.Errorf("failed to create environment sampler: %w", err)
	}
	r.frameProvider.ShareTextureView(bindingBackground, r.placeholder.TextureView(0))
	r.frameProvider.ShareTextureView(bindingEnvironment, r.placeholder.TextureView(0))
	if err := r.backend.InitBindGroup(r.frameProvider, r.pipelineCache[pipelineLit].BindGroupLayout(0), frameLayout()); err != nil {
		return fmt.Errorf("failed to create frame bind group: %w", err)
	}

	r.shadowFrameProvider = bind_group_provider.NewBindGroupProvider("Shadow Frame")
	r.shadowFrameProvider.ShareBuffer(bindingFrame, r.frameProvider.Buffer(bindingFrame))
	if err := r.backend.InitBindGroup(r.shadowFrameProvider, r.pipelineCache[pipelineShadow].BindGroupLayout(0), shadowFrameLayout()); err != nil {
		return fmt.Errorf("failed to create shadow frame bind group: %w", err)
	}

	r.initialized = true
	return nil
}

// bindEnvironment points the frame bind group at the textures for the frame's background
// and environment maps, uploading maps seen for the first time. Textures of maps no longer
// referenced are released.
func (r *renderer) bindEnvironment(frame *Frame) error {
	if frame.Background == r.boundBG && frame.Environment == r.boundEnv {
		return nil
	}

	bg, err := r.envTexture(frame.Background)
	if err != nil {
		return err
	}
	env, err := r.envTexture(frame.Environment)
	if err != nil {
		return err
	}
	r.frameProvider.ShareTextureView(bindingBackground, bg.TextureView(0))
	r.frameProvider.ShareTextureView(bindingEnvironment, env.TextureView(0))
	if err := r.backend.InitBindGroup(r.frameProvider, r.pipelineCache[pipelineLit].BindGroupLayout(0), frameLayout()); err != nil {
		return fmt.Errorf("failed to rebuild frame bind group: %w", err)
	}
	r.boundBG, r.boundEnv = frame.Background, frame.Environment

	for m, tex := range r.envTextures {
		if m != r.boundBG && m != r.boundEnv {
			tex.Release()
			delete(r.envTextures, m)
		}
	}
	return nil
}

func (r *renderer) envTexture(m *environment.Map) (bind_group_provider.BindGroupProvider, error) {
	if m == nil || len(m.Levels) == 0 {
		return r.placeholder, nil
	}
	if tex, ok := r.envTextures[m]; ok {
		return tex, nil
	}
	tex := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("Environment %s", m.Preset))
	if err := r.backend.InitTextureView(tex, 0, m.Staging()); err != nil {
		tex.Release()
		return nil, fmt.Errorf("failed to upload environment map: %w", err)
	}
	r.envTextures[m] = tex
	return tex, nil
}

// draw pairs the mesh buffers and object uniform slot of one indexed draw.
type draw struct {
	mesh   bind_group_provider.BindGroupProvider
	object bind_group_provider.BindGroupProvider
}

// prepareDraws uploads mesh buffers for new models, assigns an object uniform slot per mesh,
// and evicts mesh buffers of models not drawn this frame.
func (r *renderer) prepareDraws(items []DrawItem) ([]draw, []bind_group_provider.BufferWrite, error) {
	var draws []draw
	var writes []bind_group_provider.BufferWrite
	seen := make(map[uint64]bool, len(items))

	for _, item := range items {
		if item.Model == nil {
			continue
		}
		meshes, err := r.meshBuffers(item.Model)
		if err != nil {
			return nil, nil, err
		}
		seen[item.Model.ID()] = true
		for i, mesh := range item.Model.Meshes() {
			if meshes[i] == nil {
				continue
			}
			slot, err := r.objectSlot(len(draws))
			if err != nil {
				return nil, nil, err
			}
			writes = append(writes, bind_group_provider.BufferWrite{
				Provider: slot,
				Binding:  bindingObject,
				Data:     marshalObjectUniform(item.ModelMatrix, item.MaterialFor(mesh.MaterialIndex)),
			})
			draws = append(draws, draw{mesh: meshes[i], object: slot})
		}
	}

	for id, meshes := range r.meshes {
		if seen[id] {
			continue
		}
		for _, m := range meshes {
			if m != nil {
				m.Release()
			}
		}
		delete(r.meshes, id)
	}
	return draws, writes, nil
}

func (r *renderer) meshBuffers(m model.Model) ([]bind_group_provider.BindGroupProvider, error) {
	if meshes, ok := r.meshes[m.ID()]; ok {
		return meshes, nil
	}
	meshes := make([]bind_group_provider.BindGroupProvider, len(m.Meshes()))
	for i, mesh := range m.Meshes() {
		if len(mesh.Indices) == 0 || len(mesh.Vertices) == 0 {
			continue
		}
		p := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("%s mesh %d", m.Name(), i))
		err := r.backend.InitMeshBuffers(p, model.MarshalVertices(mesh.Vertices), model.MarshalIndices(mesh.Indices), len(mesh.Indices))
		if err != nil {
			p.Release()
			for _, prev := range meshes[:i] {
				if prev != nil {
					prev.Release()
				}
			}
			return nil, fmt.Errorf("failed to upload mesh %d of %s: %w", i, m.Name(), err)
		}
		meshes[i] = p
	}
	r.meshes[m.ID()] = meshes
	return meshes, nil
}

// objectSlot returns the object uniform provider for draw index i, creating slots as needed.
func (r *renderer) objectSlot(i int) (bind_group_provider.BindGroupProvider, error) {
	for len(r.objectSlots) <= i {
		p := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("Object %d", len(r.objectSlots)))
		if err := r.backend.InitBindGroup(p, r.pipelineCache[pipelineLit].BindGroupLayout(1), objectLayout()); err != nil {
			p.Release()
			return nil, fmt.Errorf("failed to create object bind group: %w", err)
		}
		r.objectSlots = append(r.objectSlots, p)
	}
	return r.objectSlots[i], nil
}

// prepareHelpers (re)uploads helper line buffers whose version changed and evicts helpers
// that are gone.
func (r *renderer) prepareHelpers(helpers []HelperItem) ([]bind_group_provider.BindGroupProvider, error) {
	out := make([]bind_group_provider.BindGroupProvider, 0, len(helpers))
	seen := make(map[string]bool, len(helpers))
	for _, h := range helpers {
		seen[h.ID] = true
		if len(h.Segments) == 0 {
			continue
		}
		p, ok := r.helperLines[h.ID]
		if !ok {
			p = bind_group_provider.NewBindGroupProvider(h.ID + " helper")
			r.helperLines[h.ID] = p
		}
		if !ok || p.Version() != h.Version {
			if err := r.backend.InitVertexBuffer(p, marshalLineVertices(h.Segments, h.Color), len(h.Segments)*2); err != nil {
				return nil, fmt.Errorf("failed to upload helper %s: %w", h.ID, err)
			}
			p.SetVersion(h.Version)
		}
		out = append(out, p)
	}
	for id, p := range r.helperLines {
		if !seen[id] {
			p.Release()
			delete(r.helperLines, id)
		}
	}
	return out, nil
}
