package panel

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
)

// ErrUnsupportedUpload is returned for files that are not glTF models.
var ErrUnsupportedUpload = errors.New("unsupported upload")

var glbType = filetype.NewType("glb", "model/gltf-binary")

func init() {
	filetype.AddMatcher(glbType, matchers.Matcher(func(buf []byte) bool {
		return len(buf) >= 4 && bytes.Equal(buf[:4], []byte("glTF"))
	}))
}

// CheckUpload accepts .glb files that carry the binary glTF magic and .gltf files that hold
// a JSON document.
//
// Parameters:
//   - name: the uploaded file name
//   - head: the first bytes of the file
//
// Returns:
//   - error: nil, or an error wrapping ErrUnsupportedUpload
func CheckUpload(name string, head []byte) error {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".glb":
		if !filetype.Is(head, glbType.Extension) {
			return fmt.Errorf("%w: %s is not a binary glTF file", ErrUnsupportedUpload, name)
		}
	case ".gltf":
		if kind, _ := filetype.Match(head); kind != filetype.Unknown {
			return fmt.Errorf("%w: %s is a %s file", ErrUnsupportedUpload, name, kind.MIME.Value)
		}
		body := bytes.TrimPrefix(head, []byte("\xef\xbb\xbf"))
		body = bytes.TrimLeft(body, " \t\r\n")
		if len(body) == 0 || body[0] != '{' {
			return fmt.Errorf("%w: %s is not a glTF JSON document", ErrUnsupportedUpload, name)
		}
	default:
		return fmt.Errorf("%w: only .glb and .gltf files are accepted, got %q", ErrUnsupportedUpload, name)
	}
	return nil
}
