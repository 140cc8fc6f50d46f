// Package intent defines the commands the panels send and the dispatcher that applies them.
//
// Every intent is a plain struct named after one panel action. Intents arrive as JSON frames
// of the form {"type": "<route>", ...fields}. Decode validates and normalizes them, so a
// decoded intent only carries kinds, axes and colors that parse.
package intent

import (
	"github.com/Carmen-Shannon/oxy-lightlab/engine/loader"
)

// Intent is one command for the sandbox core.
type Intent interface {
	// Route returns the wire type, for example "light.color".
	Route() string
}

// Keyed is implemented by property edits. Consecutive edits with the same key collapse into
// one undo step.
type Keyed interface {
	Intent
	Key() string
}

// Routes of every intent.
const (
	RouteLightAdd       = "light.add"
	RouteLightRemove    = "light.remove"
	RouteLightColor     = "light.color"
	RouteLightIntensity = "light.intensity"
	RouteLightPosition  = "light.position"
	RouteLightShadow    = "light.shadow"

	RouteObjectAdd       = "object.add"
	RouteObjectImport    = "object.import"
	RouteObjectRemove    = "object.remove"
	RouteObjectPosition  = "object.position"
	RouteObjectRotation  = "object.rotation"
	RouteObjectScale     = "object.scale"
	RouteObjectColor     = "object.color"
	RouteObjectRoughness = "object.roughness"
	RouteObjectMetalness = "object.metalness"

	RouteEnvironmentPreset      = "environment.preset"
	RouteEnvironmentToneMapping = "environment.tone_mapping"
	RouteEnvironmentExposure    = "environment.exposure"

	RouteUndo         = "history.undo"
	RouteRedo         = "history.redo"
	RouteSnapshotSave = "snapshot.save"
	RouteSnapshotLoad = "snapshot.load"
)

// Value limits applied by Decode.
const (
	MaxIntensity float32 = 5
	MaxExposure  float32 = 4
)

// LightAdd adds a light of the given kind.
type LightAdd struct {
	Kind string `json:"kind"`
}

// LightRemove removes a light and its helper.
type LightRemove struct {
	ID string `json:"id"`
}

// LightColor sets a light's color as "#rrggbb".
type LightColor struct {
	ID    string `json:"id"`
	Color string `json:"color"`
}

// LightIntensity sets a light's intensity.
type LightIntensity struct {
	ID    string  `json:"id"`
	Value float32 `json:"value"`
}

// LightPosition sets one axis of a light's position.
type LightPosition struct {
	ID    string  `json:"id"`
	Axis  string  `json:"axis"`
	Value float32 `json:"value"`
}

// LightShadow turns shadow casting on or off.
type LightShadow struct {
	ID      string `json:"id"`
	Enabled bool   `json:"enabled"`
}

// ObjectAdd adds a primitive of the given kind.
type ObjectAdd struct {
	Kind string `json:"kind"`
}

// ObjectImport imports an uploaded model. It is created by the upload endpoint, never
// decoded from a frame.
type ObjectImport struct {
	Resource *loader.Resource `json:"-"`
}

// ObjectRemove removes an object.
type ObjectRemove struct {
	ID string `json:"id"`
}

// ObjectPosition sets one axis of an object's position.
type ObjectPosition struct {
	ID    string  `json:"id"`
	Axis  string  `json:"axis"`
	Value float32 `json:"value"`
}

// ObjectRotation sets one Euler angle of an object, in radians.
type ObjectRotation struct {
	ID    string  `json:"id"`
	Axis  string  `json:"axis"`
	Value float32 `json:"value"`
}

// ObjectScale sets one axis of an object's scale.
type ObjectScale struct {
	ID    string  `json:"id"`
	Axis  string  `json:"axis"`
	Value float32 `json:"value"`
}

// ObjectColor sets a primitive's base color.
type ObjectColor struct {
	ID    string `json:"id"`
	Color string `json:"color"`
}

// ObjectRoughness sets a primitive's roughness in [0, 1].
type ObjectRoughness struct {
	ID    string  `json:"id"`
	Value float32 `json:"value"`
}

// ObjectMetalness sets a primitive's metalness in [0, 1].
type ObjectMetalness struct {
	ID    string  `json:"id"`
	Value float32 `json:"value"`
}

// EnvironmentPreset selects the environment preset.
type EnvironmentPreset struct {
	Preset string `json:"preset"`
}

// EnvironmentToneMapping selects the tone mapping operator.
type EnvironmentToneMapping struct {
	Mode string `json:"mode"`
}

// EnvironmentExposure sets the exposure.
type EnvironmentExposure struct {
	Value float32 `json:"value"`
}

// Undo reverts the last property edit.
type Undo struct{}

// Redo re-applies the last undone edit.
type Redo struct{}

// SnapshotSave writes the scene to the snapshot file.
type SnapshotSave struct{}

// SnapshotLoad replaces the scene with the snapshot file.
type SnapshotLoad struct{}

func (LightAdd) Route() string               { return RouteLightAdd }
func (LightRemove) Route() string            { return RouteLightRemove }
func (LightColor) Route() string             { return RouteLightColor }
func (LightIntensity) Route() string         { return RouteLightIntensity }
func (LightPosition) Route() string          { return RouteLightPosition }
func (LightShadow) Route() string            { return RouteLightShadow }
func (ObjectAdd) Route() string              { return RouteObjectAdd }
func (ObjectImport) Route() string           { return RouteObjectImport }
func (ObjectRemove) Route() string           { return RouteObjectRemove }
func (ObjectPosition) Route() string         { return RouteObjectPosition }
func (ObjectRotation) Route() string         { return RouteObjectRotation }
func (ObjectScale) Route() string            { return RouteObjectScale }
func (ObjectColor) Route() string            { return RouteObjectColor }
func (ObjectRoughness) Route() string        { return RouteObjectRoughness }
func (ObjectMetalness) Route() string        { return RouteObjectMetalness }
func (EnvironmentPreset) Route() string      { return RouteEnvironmentPreset }
func (EnvironmentToneMapping) Route() string { return RouteEnvironmentToneMapping }
func (EnvironmentExposure) Route() string    { return RouteEnvironmentExposure }
func (Undo) Route() string                   { return RouteUndo }
func (Redo) Route() string                   { return RouteRedo }
func (SnapshotSave) Route() string           { return RouteSnapshotSave }
func (SnapshotLoad) Route() string           { return RouteSnapshotLoad }

func (i LightColor) Key() string      { return i.Route() + "/" + i.ID }
func (i LightIntensity) Key() string  { return i.Route() + "/" + i.ID }
func (i LightPosition) Key() string   { return i.Route() + "/" + i.ID + "/" + i.Axis }
func (i LightShadow) Key() string     { return i.Route() + "/" + i.ID }
func (i ObjectPosition) Key() string  { return i.Route() + "/" + i.ID + "/" + i.Axis }
func (i ObjectRotation) Key() string  { return i.Route() + "/" + i.ID + "/" + i.Axis }
func (i ObjectScale) Key() string     { return i.Route() + "/" + i.ID + "/" + i.Axis }
func (i ObjectColor) Key() string     { return i.Route() + "/" + i.ID }
func (i ObjectRoughness) Key() string { return i.Route() + "/" + i.ID }
func (i ObjectMetalness) Key() string { return i.Route() + "/" + i.ID }

func (i EnvironmentPreset) Key() string      { return i.Route() }
func (i EnvironmentToneMapping) Key() string { return i.Route() }
func (i EnvironmentExposure) Key() string    { return i.Route() }
