package core

// Handles returned by a Device. Zero is never a valid handle.
type (
	Texture  uint32
	Pipeline uint32
	Mesh     uint32
)

type TextureFormat int

const (
	TextureRGBA8 TextureFormat = iota
)

type TextureDesc struct {
	Width, Height        int
	Format               TextureFormat
	Pixels               []byte
	MinFilter, MagFilter string // "nearest" or "linear"
	WrapU, WrapV         string // "clamp" or "repeat"
}

type PipelineDesc struct {
	VertexSource   string
	FragmentSource string
	DepthTest      bool
	Blend          bool
}

type AttribType int

const (
	AttribFloat32 AttribType = iota
)

type VertexAttrib struct {
	Location uint32
	Size     int32
	Type     AttribType
	Offset   int
}

type VertexLayout struct {
	Stride     int32
	Attributes []VertexAttrib
}

type MeshDesc struct {
	Vertices []float32
	Indices  []uint32
	Layout   VertexLayout
}

// DrawCmd draws IndexCount indices of Mesh with Pipe. Uniform values may be
// float32, int32, [4]float32 or mgl32.Mat4; samplers bind in map order to
// consecutive texture units.
type DrawCmd struct {
	Pipe       Pipeline
	Mesh       Mesh
	IndexCount int
	Uniforms   map[string]any
	Samplers   map[string]Texture
}

// Device is the graphics backend. Every method must be called on the thread
// that owns the context.
type Device interface {
	CreatePipeline(PipelineDesc) (Pipeline, error)
	CreateTexture(TextureDesc) (Texture, error)
	TextureSize(t Texture) (w, h int)
	CreateMesh(MeshDesc) (Mesh, error)
	UpdateMesh(m Mesh, verts []float32, inds []uint32) error
	Draw(DrawCmd)
	Clear(r, g, b, a float32)
	Resize(w, h int)
	GPUVendor() string
	GPURenderer() string
	GPUVersion() string
	Shutdown()
}
