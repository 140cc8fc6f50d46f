package loader

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/Carmen-Shannon/oxy-lightlab/common"
	"github.com/Carmen-Shannon/oxy-lightlab/engine/model"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// extDracoMeshCompression is the glTF extension for Draco-compressed geometry.
const extDracoMeshCompression = "KHR_draco_mesh_compression"

var identityMatrix = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// gltfLoaderBackendImpl is the implementation of gltfLoaderBackend.
type gltfLoaderBackendImpl struct{}

// gltfLoaderBackend is a loaderBackend implementation for glTF/GLB files.
// Node transforms are baked into the vertex data so the resulting model is a flat
// list of meshes in model space.
type gltfLoaderBackend interface {
	loaderBackend
}

var _ gltfLoaderBackend = &gltfLoaderBackendImpl{}

// newGLTFLoaderBackend creates a new glTF loader backend.
//
// Returns:
//   - gltfLoaderBackend: the loader backend for glTF/GLB files
func newGLTFLoaderBackend() gltfLoaderBackend {
	return &gltfLoaderBackendImpl{}
}

func (b *gltfLoaderBackendImpl) Import(name string, r io.Reader, dir string, progress func(float32)) (model.Model, error) {
	if progress == nil {
		progress = func(float32) {}
	}

	var dec *gltf.Decoder
	if dir != "" {
		dec = gltf.NewDecoderFS(r, os.DirFS(dir))
	} else {
		dec = gltf.NewDecoder(r)
	}
	doc := new(gltf.Document)
	if err := dec.Decode(doc); err != nil {
		return nil, fmt.Errorf("decode gltf: %w", err)
	}
	if slices.Contains(doc.ExtensionsRequired, extDracoMeshCompression) {
		return nil, fmt.Errorf("%w: %s is required", ErrUnsupportedFormat, extDracoMeshCompression)
	}

	materials := make([]common.ImportedMaterial, 0, len(doc.Materials))
	for i, gm := range doc.Materials {
		materials = append(materials, convertMaterial(i, gm))
	}

	roots := sceneRoots(doc)
	total := countMeshNodes(doc, roots)
	done := 0

	var meshes []model.Mesh
	var walk func(idx int, parent mgl32.Mat4) error
	walk = func(idx int, parent mgl32.Mat4) error {
		if idx < 0 || idx >= len(doc.Nodes) {
			return nil
		}
		node := doc.Nodes[idx]
		world := parent.Mul4(nodeMatrix(node))

		if node.Mesh != nil && *node.Mesh < len(doc.Meshes) {
			for _, prim := range doc.Meshes[*node.Mesh].Primitives {
				mesh, ok, err := readPrimitive(doc, prim, world, len(materials))
				if err != nil {
					return fmt.Errorf("mesh %d: %w", *node.Mesh, err)
				}
				if ok {
					meshes = append(meshes, mesh)
				}
			}
			done++
			progress(float32(done) / float32(total))
		}

		for _, child := range node.Children {
			if err := walk(child, world); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range roots {
		if err := walk(root, mgl32.Ident4()); err != nil {
			return nil, err
		}
	}
	if len(meshes) == 0 {
		return nil, fmt.Errorf("gltf %q contains no triangle meshes", name)
	}

	progress(1)
	return model.NewModel(
		model.WithName(name),
		model.WithMeshes(meshes...),
		model.WithMaterials(materials...),
	), nil
}

// sceneRoots returns the root nodes of the default scene, falling back to the
// first scene and then to every node without a parent.
func sceneRoots(doc *gltf.Document) []int {
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}
	if len(doc.Scenes) > 0 {
		return doc.Scenes[0].Nodes
	}

	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var roots []int
	for i, child := range isChild {
		if !child {
			roots = append(roots, i)
		}
	}
	return roots
}

func countMeshNodes(doc *gltf.Document, roots []int) int {
	n := 0
	var visit func(idx int)
	visit = func(idx int) {
		if idx < 0 || idx >= len(doc.Nodes) {
			return
		}
		if doc.Nodes[idx].Mesh != nil {
			n++
		}
		for _, c := range doc.Nodes[idx].Children {
			visit(c)
		}
	}
	for _, r := range roots {
		visit(r)
	}
	return max(n, 1)
}

// nodeMatrix returns the node's local transform, preferring an explicit matrix over TRS.
func nodeMatrix(n *gltf.Node) mgl32.Mat4 {
	if m := n.MatrixOrDefault(); m != identityMatrix {
		var out mgl32.Mat4
		for i := range 16 {
			out[i] = float32(m[i])
		}
		return out
	}

	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	q := mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}

	return mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul4(q.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
}

func convertMaterial(i int, gm *gltf.Material) common.ImportedMaterial {
	out := common.ImportedMaterial{
		Name:      common.Coalesce(gm.Name, fmt.Sprintf("material_%d", i)),
		BaseColor: [4]float32{1, 1, 1, 1},
		Metallic:  1,
		Roughness: 1,
	}
	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		bc := pbr.BaseColorFactorOrDefault()
		out.BaseColor = [4]float32{float32(bc[0]), float32(bc[1]), float32(bc[2]), float32(bc[3])}
		out.Metallic = float32(pbr.MetallicFactorOrDefault())
		out.Roughness = float32(pbr.RoughnessFactorOrDefault())
	}
	return out
}

// readPrimitive extracts a triangle-list primitive transformed by world.
// The boolean is false for primitives that are skipped (non-triangle modes or no positions).
func readPrimitive(doc *gltf.Document, prim *gltf.Primitive, world mgl32.Mat4, materialCount int) (model.Mesh, bool, error) {
	if prim.Mode != gltf.PrimitiveTriangles {
		return model.Mesh{}, false, nil
	}
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok || posIdx >= len(doc.Accessors) {
		return model.Mesh{}, false, nil
	}

	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return model.Mesh{}, false, fmt.Errorf("read positions: %w", err)
	}

	var normals [][3]float32
	if idx, ok := prim.Attributes["NORMAL"]; ok && idx < len(doc.Accessors) {
		if normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil); err != nil {
			return model.Mesh{}, false, fmt.Errorf("read normals: %w", err)
		}
	}

	var uvs [][2]float32
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok && idx < len(doc.Accessors) {
		if uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err != nil {
			return model.Mesh{}, false, fmt.Errorf("read texcoords: %w", err)
		}
	}

	var indices []uint32
	if prim.Indices != nil && *prim.Indices < len(doc.Accessors) {
		if indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil); err != nil {
			return model.Mesh{}, false, fmt.Errorf("read indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	normalMat := common.NormalMatrix(world)
	vertices := make([]model.Vertex, len(positions))
	for i, p := range positions {
		wp := world.Mul4x1(mgl32.Vec4{p[0], p[1], p[2], 1})
		vertices[i].Position = [3]float32{wp[0], wp[1], wp[2]}
		if i < len(normals) {
			n := normalMat.Mul4x1(mgl32.Vec4{normals[i][0], normals[i][1], normals[i][2], 0})
			vertices[i].Normal = common.Normalize3([3]float32{n[0], n[1], n[2]})
		}
		if i < len(uvs) {
			vertices[i].TexCoord = uvs[i]
		}
	}
	if len(normals) < len(positions) {
		computeNormals(vertices, indices)
	}

	matIdx := -1
	if prim.Material != nil && *prim.Material < materialCount {
		matIdx = *prim.Material
	}

	return model.Mesh{Vertices: vertices, Indices: indices, MaterialIndex: matIdx}, true, nil
}

// computeNormals accumulates face normals into each vertex and normalises the result.
func computeNormals(vertices []model.Vertex, indices []uint32) {
	for i := range vertices {
		vertices[i].Normal = [3]float32{}
	}
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		if int(a) >= len(vertices) || int(b) >= len(vertices) || int(c) >= len(vertices) {
			continue
		}
		pa := mgl32.Vec3(vertices[a].Position)
		e1 := mgl32.Vec3(vertices[b].Position).Sub(pa)
		e2 := mgl32.Vec3(vertices[c].Position).Sub(pa)
		fn := e1.Cross(e2)
		for _, v := range [3]uint32{a, b, c} {
			n := mgl32.Vec3(vertices[v].Normal).Add(fn)
			vertices[v].Normal = [3]float32(n)
		}
	}
	for i := range vertices {
		vertices[i].Normal = common.Normalize3(vertices[i].Normal)
	}
}
