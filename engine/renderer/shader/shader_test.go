package shader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreProcessorInjectsRegisteredSource(t *testing.T) {
	pp := NewPreProcessor()
	pp.Register("answer", "const ANSWER: u32 = 42u;")

	out, err := pp.Process("// @oxy:include answer\n  //@oxy:include answer\nfn f() {}")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "const ANSWER"))
	assert.Contains(t, out, "fn f() {}")
	assert.NotContains(t, out, "@oxy:include")
}

func TestPreProcessorRejectsUnknownInclude(t *testing.T) {
	_, err := NewPreProcessor().Process("// @oxy:include nope")
	assert.ErrorContains(t, err, "nope")

	_, err = NewPreProcessor().Process("// @oxy:include")
	assert.Error(t, err)
}

func TestPreProcessorLeavesOrdinaryCommentsAlone(t *testing.T) {
	src := "// plain comment\nlet x = 1; // trailing"
	out, err := NewPreProcessor().Process(src)
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestEmbeddedShadersExpandAndExposeEntryPoints(t *testing.T) {
	cases := []struct {
		name   string
		source string
		stage  ShaderType
		entry  string
	}{
		{"lit vertex", LitSource, ShaderTypeVertex, "vs_main"},
		{"lit fragment", LitSource, ShaderTypeFragment, "fs_main"},
		{"sky fragment", SkySource, ShaderTypeFragment, "fs_main"},
		{"line vertex", LineSource, ShaderTypeVertex, "vs_main"},
		{"shadow vertex", ShadowSource, ShaderTypeVertex, "vs_main"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewShader(tc.name, tc.stage, tc.source)
			assert.Equal(t, tc.entry, s.EntryPoint())
			assert.Contains(t, s.Source(), "struct FrameUniform")
			assert.NotContains(t, s.Source(), "@oxy:include")
			assert.Equal(t, s.Source(), s.Module().WGSLDescriptor.Code)
		})
	}
}

func TestLitShaderDeclaresExpectedBindings(t *testing.T) {
	s := NewShader("lit", ShaderTypeFragment, LitSource)
	assert.Contains(t, s.Bindings(), Binding{Group: 0, Binding: 0})
	assert.Contains(t, s.Bindings(), Binding{Group: 0, Binding: 1})
	assert.Contains(t, s.Bindings(), Binding{Group: 1, Binding: 0})
	assert.Contains(t, s.Source(), "struct Light")
	assert.Contains(t, s.Source(), "struct MaterialParams")
}

func TestNewShaderPanicsWithoutEntryPoint(t *testing.T) {
	assert.Panics(t, func() {
		NewShader("shadow fragment", ShaderTypeFragment, ShadowSource)
	})
}
