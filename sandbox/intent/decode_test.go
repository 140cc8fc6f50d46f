package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	cases := []struct {
		name  string
		frame string
		want  Intent
	}{
		{"light add", `{"type":"light.add","kind":"spot"}`, LightAdd{Kind: "spot"}},
		{"light color normalized", `{"type":"light.color","id":"point_1","color":"#FF8800"}`, LightColor{ID: "point_1", Color: "#ff8800"}},
		{"short color", `{"type":"light.color","id":"point_1","color":"#f80"}`, LightColor{ID: "point_1", Color: "#ff8800"}},
		{"intensity clamped high", `{"type":"light.intensity","id":"spot_2","value":12}`, LightIntensity{ID: "spot_2", Value: MaxIntensity}},
		{"intensity clamped low", `{"type":"light.intensity","id":"spot_2","value":-1}`, LightIntensity{ID: "spot_2", Value: 0}},
		{"light position", `{"type":"light.position","id":"point_1","axis":"y","value":3.5}`, LightPosition{ID: "point_1", Axis: "y", Value: 3.5}},
		{"shadow", `{"type":"light.shadow","id":"directional_1","enabled":false}`, LightShadow{ID: "directional_1"}},
		{"object add", `{"type":"object.add","kind":"torus"}`, ObjectAdd{Kind: "torus"}},
		{"roughness clamped", `{"type":"object.roughness","id":"box_1","value":1.5}`, ObjectRoughness{ID: "box_1", Value: 1}},
		{"metalness", `{"type":"object.metalness","id":"box_1","value":0.3}`, ObjectMetalness{ID: "box_1", Value: 0.3}},
		{"rotation", `{"type":"object.rotation","id":"box_1","axis":"z","value":1.2}`, ObjectRotation{ID: "box_1", Axis: "z", Value: 1.2}},
		{"preset", `{"type":"environment.preset","preset":"night"}`, EnvironmentPreset{Preset: "night"}},
		{"tone mapping", `{"type":"environment.tone_mapping","mode":"reinhard"}`, EnvironmentToneMapping{Mode: "reinhard"}},
		{"exposure clamped", `{"type":"environment.exposure","value":9}`, EnvironmentExposure{Value: MaxExposure}},
		{"undo", `{"type":"history.undo"}`, Undo{}},
		{"snapshot load", `{"type":"snapshot.load"}`, SnapshotLoad{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode([]byte(tc.frame))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeRejects(t *testing.T) {
	cases := []struct {
		name  string
		frame string
		want  error
	}{
		{"not json", `light.add`, ErrInvalidIntent},
		{"unknown type", `{"type":"light.explode"}`, ErrUnknownIntent},
		{"missing type", `{"kind":"point"}`, ErrUnknownIntent},
		{"import is not a wire intent", `{"type":"object.import"}`, ErrUnknownIntent},
		{"unknown light kind", `{"type":"light.add","kind":"area"}`, ErrInvalidIntent},
		{"model is not a primitive", `{"type":"object.add","kind":"model"}`, ErrInvalidIntent},
		{"bad color", `{"type":"light.color","id":"point_1","color":"orange"}`, ErrInvalidIntent},
		{"missing id", `{"type":"light.intensity","value":1}`, ErrInvalidIntent},
		{"bad axis", `{"type":"object.scale","id":"box_1","axis":"w","value":1}`, ErrInvalidIntent},
		{"wrong field type", `{"type":"light.intensity","id":"point_1","value":"bright"}`, ErrInvalidIntent},
		{"bad preset", `{"type":"environment.preset","preset":"desert"}`, ErrInvalidIntent},
		{"bad tone mapping", `{"type":"environment.tone_mapping","mode":"filmic"}`, ErrInvalidIntent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.frame))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestNormalize(t *testing.T) {
	got, err := Normalize(LightIntensity{ID: "point_1", Value: 7})
	require.NoError(t, err)
	assert.Equal(t, LightIntensity{ID: "point_1", Value: MaxIntensity}, got)

	_, err = Normalize(LightColor{ID: "point_1", Color: "nope"})
	assert.ErrorIs(t, err, ErrInvalidIntent)

	got, err = Normalize(Undo{})
	require.NoError(t, err)
	assert.Equal(t, Undo{}, got)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, LightPosition{ID: "a", Axis: "x"}.Key(), LightPosition{ID: "a", Axis: "x", Value: 4}.Key())
	assert.NotEqual(t, LightPosition{ID: "a", Axis: "x"}.Key(), LightPosition{ID: "a", Axis: "y"}.Key())
	assert.NotEqual(t, ObjectColor{ID: "a"}.Key(), LightColor{ID: "a"}.Key())
}
