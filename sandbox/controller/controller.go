// Package controller keeps the editable metadata of lights, objects and the environment in
// step with the live scene and renders it into the panels.
//
// Controllers are not safe for concurrent use. Every method runs on the intent dispatcher
// goroutine; loader callbacks are handed back to it through the post function.
package controller

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-lightlab/engine/environment"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/game_object"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/light"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/loader"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/renderer"
	"github.com/jinzhu/copier"
)

// LightRegistry is the part of the scene the light controller edits.
type LightRegistry interface {
	AddLight(id string, l light.Light) (light.Light, error)
	RemoveLight(id string) bool
	Light(id string) (light.Light, bool)
	AddHelper(lightID string, h light.Helper) error
	RemoveHelper(lightID string) bool
	Helper(lightID string) (light.Helper, bool)
}

// ObjectRegistry is the part of the scene the object controller edits.
type ObjectRegistry interface {
	AddObject(id string, obj game_object.GameObject) (game_object.GameObject, error)
	RemoveObject(id string) bool
	Object(id string) (game_object.GameObject, bool)
}

// EnvironmentTarget receives the environment maps.
type EnvironmentTarget interface {
	SetBackground(m *environment.Map)
	SetEnvironment(m *environment.Map)
}

// ToneMapper receives the tone mapping settings.
type ToneMapper interface {
	SetToneMapping(tm renderer.ToneMapping)
	SetExposure(exposure float32)
}

// ModelLoader loads models asynchronously.
type ModelLoader interface {
	LoadModel(ctx context.Context, path string, cb loader.ModelCallbacks)
}

// EnvironmentLoader loads environment maps asynchronously.
type EnvironmentLoader interface {
	LoadEnvironment(ctx context.Context, preset environment.Preset, path string, cb loader.EnvironmentCallbacks)
}

// PostFunc hands a callback back to the goroutine that owns the controllers. A non-nil
// error means f will never run.
type PostFunc func(f func()) error

func runInline(f func()) error {
	f()
	return nil
}

// IDGenerator hands out "<kind>_<n>" identifiers. Each kind has its own counter starting at
// 1, and a number is never handed out twice, even after the entity is removed.
type IDGenerator struct {
	mu       sync.Mutex
	counters map[string]int
}

// NewIDGenerator creates an IDGenerator with every counter at zero.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{counters: make(map[string]int)}
}

// Next returns the next identifier for kind.
//
// Parameters:
//   - kind: the entity kind
//
// Returns:
//   - string: the identifier
func (g *IDGenerator) Next(kind string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counters[kind]++
	return fmt.Sprintf("%s_%d", kind, g.counters[kind])
}

// ParseID splits an identifier into its kind and number.
//
// Parameters:
//   - id: the identifier
//
// Returns:
//   - string: the kind
//   - int: the number
//   - bool: false if id is not of the form "<kind>_<n>"
func ParseID(id string) (string, int, bool) {
	i := strings.LastIndexByte(id, '_')
	if i <= 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(id[i+1:])
	if err != nil || n < 1 {
		return "", 0, false
	}
	return id[:i], n, true
}

// deepCopy copies src into dst without sharing pointers, so views handed to the panels can
// never alias the records.
func deepCopy(dst, src any) {
	if err := copier.CopyWithOption(dst, src, copier.Option{DeepCopy: true}); err != nil {
		panic(fmt.Sprintf("controller: copy %T: %v", src, err))
	}
}

func vec3Ptr(v [3]float32) *[3]float32 {
	return &v
}

func boolPtr(b bool) *bool {
	return &b
}

func float32Ptr(f float32) *float32 {
	return &f
}
