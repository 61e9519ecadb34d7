// Package gfxtest provides an in-memory core.Device for tests.
package gfxtest

import (
	"errors"
	"maps"
	"slices"

	"github.com/hubastard/canopy/engine/core"
)

var ErrInjected = errors.New("gfxtest: injected failure")

// Mesh is the last data uploaded to a mesh handle.
type Mesh struct {
	Desc     core.MeshDesc
	Vertices []float32
	Indices  []uint32
}

// Device records every call. Set Fail* to make the matching call fail.
type Device struct {
	Pipelines []core.PipelineDesc
	Textures  []core.TextureDesc
	Meshes    map[core.Mesh]*Mesh
	Draws     []Draw
	Clears    [][4]float32
	Size      [2]int
	ShutDown  bool

	FailPipeline bool
	FailTexture  bool
	FailMesh     bool

	next     uint32
	texIndex map[core.Texture]int
}

// Draw is a recorded DrawCmd with a copy of the mesh contents at draw time.
type Draw struct {
	Cmd      core.DrawCmd
	Vertices []float32
	Indices  []uint32
}

func NewDevice() *Device {
	return &Device{Meshes: map[core.Mesh]*Mesh{}, texIndex: map[core.Texture]int{}}
}

func (d *Device) handle() uint32 {
	d.next++
	return d.next
}

func (d *Device) CreatePipeline(desc core.PipelineDesc) (core.Pipeline, error) {
	if d.FailPipeline {
		return 0, ErrInjected
	}
	d.Pipelines = append(d.Pipelines, desc)
	return core.Pipeline(d.handle()), nil
}

func (d *Device) CreateTexture(desc core.TextureDesc) (core.Texture, error) {
	if d.FailTexture {
		return 0, ErrInjected
	}
	h := core.Texture(d.handle())
	d.texIndex[h] = len(d.Textures)
	d.Textures = append(d.Textures, desc)
	return h, nil
}

// TextureSize reports the size of a texture created by this device, 0x0 otherwise.
func (d *Device) TextureSize(t core.Texture) (int, int) {
	if i, ok := d.texIndex[t]; ok {
		return d.Textures[i].Width, d.Textures[i].Height
	}
	return 0, 0
}

func (d *Device) CreateMesh(desc core.MeshDesc) (core.Mesh, error) {
	if d.FailMesh {
		return 0, ErrInjected
	}
	h := core.Mesh(d.handle())
	d.Meshes[h] = &Mesh{Desc: desc}
	return h, nil
}

func (d *Device) UpdateMesh(m core.Mesh, verts []float32, inds []uint32) error {
	mesh, ok := d.Meshes[m]
	if !ok {
		return errors.New("gfxtest: unknown mesh")
	}
	mesh.Vertices = slices.Clone(verts)
	mesh.Indices = slices.Clone(inds)
	return nil
}

func (d *Device) Draw(cmd core.DrawCmd) {
	var rec Draw
	rec.Cmd = cmd
	rec.Cmd.Uniforms = maps.Clone(cmd.Uniforms)
	rec.Cmd.Samplers = maps.Clone(cmd.Samplers)
	if m, ok := d.Meshes[cmd.Mesh]; ok {
		rec.Vertices = slices.Clone(m.Vertices)
		rec.Indices = slices.Clone(m.Indices)
	}
	d.Draws = append(d.Draws, rec)
}

func (d *Device) Clear(r, g, b, a float32) { d.Clears = append(d.Clears, [4]float32{r, g, b, a}) }
func (d *Device) Resize(w, h int)          { d.Size = [2]int{w, h} }
func (d *Device) GPUVendor() string        { return "gfxtest" }
func (d *Device) GPURenderer() string      { return "in-memory" }
func (d *Device) GPUVersion() string       { return "0" }
func (d *Device) Shutdown()                { d.ShutDown = true }
