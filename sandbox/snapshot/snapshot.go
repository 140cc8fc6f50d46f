// Package snapshot saves the editable scene to YAML and restores it.
//
// Lights, primitives and the environment are saved. Imported models are not, because their
// uploaded file only lives as long as the process.
package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-lightlab/common"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/game_object"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/light"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/logger"
	"github.com/Carmen-Shannon/oxy-lightlab/sandbox/controller"
	"github.com/Carmen-Shannon/oxy-lightlab/sandbox/intent"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Version is the snapshot format version written by Save.
const Version = 1

// ErrVersion is returned when a snapshot has a version this build cannot read.
var ErrVersion = errors.New("unsupported snapshot version")

// Snapshot is the saved form of the scene.
type Snapshot struct {
	Version     int                         `yaml:"version"`
	Environment controller.EnvironmentState `yaml:"environment"`
	Lights      []controller.LightRecord    `yaml:"lights"`
	Objects     []controller.ObjectRecord   `yaml:"objects"`
}

// Controllers are the controllers a snapshot is taken from and restored into.
type Controllers struct {
	Lights      *controller.LightController
	Objects     *controller.ObjectController
	Environment *controller.EnvironmentController
}

// Capture takes a snapshot of the controllers' records. Imported models are skipped.
//
// Parameters:
//   - c: the controllers
//
// Returns:
//   - *Snapshot: the snapshot
func Capture(c Controllers) *Snapshot {
	s := &Snapshot{
		Version:     Version,
		Environment: c.Environment.State(),
		Lights:      c.Lights.Records(),
	}
	skipped := 0
	for _, rec := range c.Objects.Records() {
		if rec.Kind == string(game_object.KindModel) {
			skipped++
			continue
		}
		s.Objects = append(s.Objects, rec)
	}
	if skipped > 0 {
		logger.Log.Info("imported models are not saved in snapshots", zap.Int("skipped", skipped))
	}
	return s
}

// Save writes s to path as YAML.
//
// Parameters:
//   - path: the file
//   - s: the snapshot
//
// Returns:
//   - error: error if encoding or writing fails
func Save(path string, s *Snapshot) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Load reads a snapshot from path. Unknown keys are rejected.
//
// Parameters:
//   - path: the file
//
// Returns:
//   - *Snapshot: the snapshot
//   - error: error if reading or decoding fails, or ErrVersion
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var s Snapshot
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	if s.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, s.Version)
	}
	return &s, nil
}

// Restore replaces the scene with s. Entities are re-created through the controllers, so
// they get fresh ids, and every saved property is replayed as the intent a panel would send.
// Records that do not validate are skipped and reported in the returned error; the rest
// still restore.
//
// Parameters:
//   - s: the snapshot
//   - c: the controllers
//   - apply: runs one intent, normally Dispatcher.Apply
//
// Returns:
//   - error: the joined problems, or nil
func Restore(s *Snapshot, c Controllers, apply func(intent.Intent) error) error {
	var errs []error
	run := func(in intent.Intent) {
		norm, err := intent.Normalize(in)
		if err == nil {
			err = apply(norm)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}

	c.Lights.Clear()
	c.Objects.Clear()

	run(intent.EnvironmentToneMapping{Mode: s.Environment.ToneMapping})
	run(intent.EnvironmentExposure{Value: s.Environment.Exposure})
	run(intent.EnvironmentPreset{Preset: s.Environment.Preset})

	for _, rec := range s.Lights {
		kind, ok := light.ParseKind(rec.Kind)
		if !ok {
			errs = append(errs, fmt.Errorf("light %s: unknown kind %q", rec.ID, rec.Kind))
			continue
		}
		id, err := c.Lights.Add(kind)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		run(intent.LightColor{ID: id, Color: rec.Color})
		run(intent.LightIntensity{ID: id, Value: rec.Intensity})
		if rec.Position != nil {
			for _, axis := range axes {
				run(intent.LightPosition{ID: id, Axis: axis.String(), Value: rec.Position[axis]})
			}
		}
		if rec.CastShadow != nil {
			run(intent.LightShadow{ID: id, Enabled: *rec.CastShadow})
		}
	}

	for _, rec := range s.Objects {
		kind, ok := game_object.ParseKind(rec.Kind)
		if !ok || !kind.IsPrimitive() {
			errs = append(errs, fmt.Errorf("object %s: unknown primitive kind %q", rec.ID, rec.Kind))
			continue
		}
		id, err := c.Objects.AddPrimitive(kind)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, axis := range axes {
			a := axis.String()
			run(intent.ObjectPosition{ID: id, Axis: a, Value: rec.Position[axis]})
			run(intent.ObjectRotation{ID: id, Axis: a, Value: rec.Rotation[axis]})
			run(intent.ObjectScale{ID: id, Axis: a, Value: rec.Scale[axis]})
		}
		if rec.Material != nil {
			run(intent.ObjectColor{ID: id, Color: rec.Material.Color})
			run(intent.ObjectRoughness{ID: id, Value: rec.Material.Roughness})
			run(intent.ObjectMetalness{ID: id, Value: rec.Material.Metalness})
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("restore snapshot: %w", errors.Join(errs...))
	}
	return nil
}

var axes = []common.Axis{common.AxisX, common.AxisY, common.AxisZ}

// Register installs the snapshot.save and snapshot.load handlers on d. Loading clears the
// undo history, since its entries name ids that no longer exist.
//
// Parameters:
//   - d: the dispatcher
//   - path: the snapshot file
//   - c: the controllers
func Register(d *intent.Dispatcher, path string, c Controllers) {
	d.Handle(intent.RouteSnapshotSave, func(intent.Intent) (intent.Intent, error) {
		s := Capture(c)
		if err := Save(path, s); err != nil {
			return nil, err
		}
		logger.Log.Info("snapshot saved", zap.String("path", path),
			zap.Int("lights", len(s.Lights)), zap.Int("objects", len(s.Objects)))
		return nil, nil
	})
	d.Handle(intent.RouteSnapshotLoad, func(intent.Intent) (intent.Intent, error) {
		s, err := Load(path)
		if err != nil {
			return nil, err
		}
		err = Restore(s, c, d.Apply)
		d.History().Clear()
		logger.Log.Info("snapshot loaded", zap.String("path", path),
			zap.Int("lights", len(s.Lights)), zap.Int("objects", len(s.Objects)))
		return nil, err
	})
}
