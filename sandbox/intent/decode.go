package intent

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-lightlab/common"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/environment"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/game_object"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/light"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/renderer"
)

var (
	// ErrUnknownIntent is returned for frames whose type names no intent.
	ErrUnknownIntent = errors.New("unknown intent")
	// ErrInvalidIntent is returned for frames whose fields do not validate.
	ErrInvalidIntent = errors.New("invalid intent")
)

type envelope struct {
	Type string `json:"type"`
}

// Decode parses one JSON frame. Intensities, exposure and material factors are clamped to
// their ranges and colors are normalized to lowercase "#rrggbb".
//
// Parameters:
//   - data: the JSON frame
//
// Returns:
//   - Intent: the decoded intent
//   - error: ErrUnknownIntent or ErrInvalidIntent wrapping the cause
func Decode(data []byte) (Intent, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidIntent, err)
	}

	var in Intent
	switch env.Type {
	case RouteLightAdd:
		in = &LightAdd{}
	case RouteLightRemove:
		in = &LightRemove{}
	case RouteLightColor:
		in = &LightColor{}
	case RouteLightIntensity:
		in = &LightIntensity{}
	case RouteLightPosition:
		in = &LightPosition{}
	case RouteLightShadow:
		in = &LightShadow{}
	case RouteObjectAdd:
		in = &ObjectAdd{}
	case RouteObjectRemove:
		in = &ObjectRemove{}
	case RouteObjectPosition:
		in = &ObjectPosition{}
	case RouteObjectRotation:
		in = &ObjectRotation{}
	case RouteObjectScale:
		in = &ObjectScale{}
	case RouteObjectColor:
		in = &ObjectColor{}
	case RouteObjectRoughness:
		in = &ObjectRoughness{}
	case RouteObjectMetalness:
		in = &ObjectMetalness{}
	case RouteEnvironmentPreset:
		in = &EnvironmentPreset{}
	case RouteEnvironmentToneMapping:
		in = &EnvironmentToneMapping{}
	case RouteEnvironmentExposure:
		in = &EnvironmentExposure{}
	case RouteUndo:
		return Undo{}, nil
	case RouteRedo:
		return Redo{}, nil
	case RouteSnapshotSave:
		return SnapshotSave{}, nil
	case RouteSnapshotLoad:
		return SnapshotLoad{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownIntent, env.Type)
	}

	if err := json.Unmarshal(data, in); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidIntent, env.Type, err)
	}
	out, err := normalize(in)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidIntent, env.Type, err)
	}
	return out, nil
}

// Normalize validates an intent built in code the same way Decode validates a frame.
//
// Parameters:
//   - in: the intent
//
// Returns:
//   - Intent: the normalized intent
//   - error: ErrInvalidIntent wrapping the cause
func Normalize(in Intent) (Intent, error) {
	switch v := in.(type) {
	case LightAdd:
		in = &v
	case LightRemove:
		in = &v
	case LightColor:
		in = &v
	case LightIntensity:
		in = &v
	case LightPosition:
		in = &v
	case LightShadow:
		in = &v
	case ObjectAdd:
		in = &v
	case ObjectRemove:
		in = &v
	case ObjectPosition:
		in = &v
	case ObjectRotation:
		in = &v
	case ObjectScale:
		in = &v
	case ObjectColor:
		in = &v
	case ObjectRoughness:
		in = &v
	case ObjectMetalness:
		in = &v
	case EnvironmentPreset:
		in = &v
	case EnvironmentToneMapping:
		in = &v
	case EnvironmentExposure:
		in = &v
	default:
		return in, nil
	}
	out, err := normalize(in)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidIntent, in.Route(), err)
	}
	return out, nil
}

// normalize validates the pointer form of an intent and returns it by value.
func normalize(in Intent) (Intent, error) {
	switch v := in.(type) {
	case *LightAdd:
		if _, ok := light.ParseKind(v.Kind); !ok {
			return nil, fmt.Errorf("unknown light kind %q", v.Kind)
		}
		return *v, nil
	case *LightRemove:
		return *v, requireID(v.ID)
	case *LightColor:
		c, err := normalizeColor(v.ID, v.Color)
		v.Color = c
		return *v, err
	case *LightIntensity:
		v.Value = common.Clamp(v.Value, 0, MaxIntensity)
		return *v, requireID(v.ID)
	case *LightPosition:
		return *v, requireAxis(v.ID, v.Axis)
	case *LightShadow:
		return *v, requireID(v.ID)
	case *ObjectAdd:
		kind, ok := game_object.ParseKind(v.Kind)
		if !ok || !kind.IsPrimitive() {
			return nil, fmt.Errorf("unknown primitive kind %q", v.Kind)
		}
		return *v, nil
	case *ObjectRemove:
		return *v, requireID(v.ID)
	case *ObjectPosition:
		return *v, requireAxis(v.ID, v.Axis)
	case *ObjectRotation:
		return *v, requireAxis(v.ID, v.Axis)
	case *ObjectScale:
		return *v, requireAxis(v.ID, v.Axis)
	case *ObjectColor:
		c, err := normalizeColor(v.ID, v.Color)
		v.Color = c
		return *v, err
	case *ObjectRoughness:
		v.Value = common.Clamp(v.Value, 0, 1)
		return *v, requireID(v.ID)
	case *ObjectMetalness:
		v.Value = common.Clamp(v.Value, 0, 1)
		return *v, requireID(v.ID)
	case *EnvironmentPreset:
		if _, err := environment.ParsePreset(v.Preset); err != nil {
			return nil, err
		}
		return *v, nil
	case *EnvironmentToneMapping:
		if _, err := renderer.ParseToneMapping(v.Mode); err != nil {
			return nil, err
		}
		return *v, nil
	case *EnvironmentExposure:
		v.Value = common.Clamp(v.Value, 0, MaxExposure)
		return *v, nil
	}
	return nil, fmt.Errorf("no validation for %T", in)
}

func requireID(id string) error {
	if id == "" {
		return errors.New("missing id")
	}
	return nil
}

func requireAxis(id, axis string) error {
	if err := requireID(id); err != nil {
		return err
	}
	if _, ok := common.ParseAxis(axis); !ok {
		return fmt.Errorf("unknown axis %q", axis)
	}
	return nil
}

func normalizeColor(id, color string) (string, error) {
	if err := requireID(id); err != nil {
		return color, err
	}
	return common.NormalizeHexColor(color)
}
