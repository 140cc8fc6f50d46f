// pre_processor.go implements the Oxy WGSL shader pre-processor. It scans shader
// source code for @oxy:include annotations and replaces each one with the WGSL
// source registered under the annotation's argument.
package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-lightlab/engine/light"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/renderer/material"
)

// includeDirective is the annotation that marks a line to be replaced by registered source.
const includeDirective = "@oxy:include"

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// includes maps include names to the WGSL source injected in their place.
	includes map[string]string
}

// PreProcessor processes raw WGSL shader source code containing @oxy:include annotations.
type PreProcessor interface {
	// Process replaces every `// @oxy:include <name>` line with the source registered for name.
	// Each name is injected at most once per call; repeated includes expand to nothing.
	//
	// Parameters:
	//   - source: the raw WGSL shader source code
	//
	// Returns:
	//   - string: the processed WGSL source
	//   - error: an error if an include names an unknown source or is malformed
	Process(source string) (string, error)

	// Register adds or replaces an include source.
	//
	// Parameters:
	//   - name: the include name
	//   - source: the WGSL source injected for the name
	Register(name, source string)
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with the engine's shared WGSL definitions registered:
// frame, light, material, envmap and tonemap.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		includes: map[string]string{
			"frame":    frameSource,
			"light":    light.GPULightSource,
			"material": material.GPUMaterialSource,
			"envmap":   envmapSource,
			"tonemap":  tonemapSource,
		},
	}
}

func (p *preProcessor) Register(name, source string) {
	p.includes[name] = source
}

func (p *preProcessor) Process(source string) (string, error) {
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	seen := make(map[string]bool)

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		rest, ok := strings.CutPrefix(trimmed, "//")
		if !ok {
			out = append(out, line)
			continue
		}
		arg, ok := strings.CutPrefix(strings.TrimSpace(rest), includeDirective)
		if !ok {
			out = append(out, line)
			continue
		}

		fields := strings.Fields(arg)
		if len(fields) != 1 {
			return "", fmt.Errorf("line %d: %s takes exactly one argument", i+1, includeDirective)
		}
		name := fields[0]
		src, ok := p.includes[name]
		if !ok {
			return "", fmt.Errorf("line %d: unknown %s argument %q", i+1, includeDirective, name)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, src)
	}
	return strings.Join(out, "\n"), nil
}
