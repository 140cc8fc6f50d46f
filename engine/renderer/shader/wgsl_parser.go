package shader

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// vertexEntryRegex matches @vertex functions and captures the entry point name
	vertexEntryRegex = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)

	// fragmentEntryRegex matches @fragment functions and captures the entry point name
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// bindingDeclRegex captures the group and binding of declarations like
	// @group(0) @binding(1) var<uniform> lights: array<Light, 16>;
	bindingDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var`)
)

// Binding identifies one resource slot declared by a shader.
type Binding struct {
	Group   int
	Binding int
}

// parseEntryPoint finds the name of the first entry point of the given stage.
//
// Parameters:
//   - source: the WGSL source
//   - shaderType: the stage to look for
//
// Returns:
//   - string: the entry point name, or an empty string if the stage has none
func parseEntryPoint(source string, shaderType ShaderType) string {
	cleaned := stripLineComments(source)

	var re *regexp.Regexp
	switch shaderType {
	case ShaderTypeVertex:
		re = vertexEntryRegex
	case ShaderTypeFragment:
		re = fragmentEntryRegex
	default:
		return ""
	}

	if match := re.FindStringSubmatch(cleaned); match != nil {
		return match[1]
	}
	return ""
}

// parseBindings lists every @group/@binding pair declared in source, in source order.
func parseBindings(source string) []Binding {
	cleaned := stripLineComments(source)
	matches := bindingDeclRegex.FindAllStringSubmatch(cleaned, -1)
	out := make([]Binding, 0, len(matches))
	for _, m := range matches {
		g, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])
		out = append(out, Binding{Group: g, Binding: b})
	}
	return out
}

// stripLineComments removes single-line // comments from WGSL source.
func stripLineComments(source string) string {
	lines := strings.Split(source, "\n")
	for i, line := range lines {
		if idx := strings.Index(line, "//"); idx >= 0 {
			lines[i] = line[:idx]
		}
	}
	return strings.Join(lines, "\n")
}
