package panel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckUpload(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

	cases := []struct {
		name string
		file string
		head []byte
		ok   bool
	}{
		{"binary gltf", "duck.glb", []byte("glTF\x02\x00\x00\x00"), true},
		{"upper case extension", "DUCK.GLB", []byte("glTF\x02\x00\x00\x00"), true},
		{"glb without magic", "duck.glb", []byte("{\"asset\":{}}"), false},
		{"gltf json", "duck.gltf", []byte("  {\"asset\":{\"version\":\"2.0\"}}"), true},
		{"gltf json with bom", "duck.gltf", []byte("\xef\xbb\xbf{\"asset\":{}}"), true},
		{"gltf holding a png", "duck.gltf", png, false},
		{"gltf not json", "duck.gltf", []byte("solid cube"), false},
		{"empty gltf", "duck.gltf", nil, false},
		{"obj", "duck.obj", []byte("v 0 0 0"), false},
		{"no extension", "duck", []byte("glTF"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckUpload(tc.file, tc.head)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrUnsupportedUpload)
			}
		})
	}
}
