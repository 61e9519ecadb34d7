// Package glbackend implements core.Device on OpenGL 3.3 core.
package glbackend

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hubastard/canopy/engine/colors"
	"github.com/hubastard/canopy/engine/core"
)

type pipeline struct {
	program uint32
	desc    core.PipelineDesc
	locs    map[string]int32
}

type texture struct {
	id   uint32
	w, h int
}

type mesh struct {
	vao, vbo, ebo uint32
	vcap, icap    int // element capacity of the buffers
}

// Device owns every GL object it hands out. The window's context must be
// current on the calling thread.
type Device struct {
	pipes    map[core.Pipeline]*pipeline
	textures map[core.Texture]texture
	meshes   map[core.Mesh]*mesh
	next     uint32
	warned   map[string]bool
}

// NewDevice loads the GL entry points of the current context.
func NewDevice() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl init: %w", err)
	}
	d := &Device{
		pipes:    map[core.Pipeline]*pipeline{},
		textures: map[core.Texture]texture{},
		meshes:   map[core.Mesh]*mesh{},
		warned:   map[string]bool{},
	}
	core.Logger().Info("gl device", "vendor", d.GPUVendor(), "renderer", d.GPURenderer(), "version", d.GPUVersion())
	return d, nil
}

func (d *Device) handle() uint32 {
	d.next++
	return d.next
}

func (d *Device) CreatePipeline(desc core.PipelineDesc) (core.Pipeline, error) {
	prog, err := makeProgram(desc.VertexSource, desc.FragmentSource)
	if err != nil {
		return 0, err
	}
	h := core.Pipeline(d.handle())
	d.pipes[h] = &pipeline{program: prog, desc: desc, locs: map[string]int32{}}
	return h, nil
}

func (d *Device) CreateTexture(desc core.TextureDesc) (core.Texture, error) {
	if desc.Format != core.TextureRGBA8 {
		return 0, fmt.Errorf("gl: unsupported texture format %d", desc.Format)
	}
	if desc.Width <= 0 || desc.Height <= 0 || len(desc.Pixels) < desc.Width*desc.Height*4 {
		return 0, fmt.Errorf("gl: texture %dx%d needs %d bytes, got %d", desc.Width, desc.Height, desc.Width*desc.Height*4, len(desc.Pixels))
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filter(desc.MinFilter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filter(desc.MagFilter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrap(desc.WrapU))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrap(desc.WrapV))
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(desc.Width), int32(desc.Height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(desc.Pixels))
	gl.BindTexture(gl.TEXTURE_2D, 0)

	h := core.Texture(d.handle())
	d.textures[h] = texture{id: id, w: desc.Width, h: desc.Height}
	return h, nil
}

func (d *Device) TextureSize(t core.Texture) (int, int) {
	tex, ok := d.textures[t]
	if !ok {
		return 0, 0
	}
	return tex.w, tex.h
}

func (d *Device) CreateMesh(desc core.MeshDesc) (core.Mesh, error) {
	if len(desc.Vertices) == 0 || len(desc.Indices) == 0 {
		return 0, fmt.Errorf("gl: empty mesh")
	}
	m := &mesh{vcap: len(desc.Vertices), icap: len(desc.Indices)}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(desc.Vertices)*4, gl.Ptr(desc.Vertices), gl.DYNAMIC_DRAW)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(desc.Indices)*4, gl.Ptr(desc.Indices), gl.DYNAMIC_DRAW)

	for _, a := range desc.Layout.Attributes {
		gl.EnableVertexAttribArray(a.Location)
		gl.VertexAttribPointerWithOffset(a.Location, a.Size, attribType(a.Type), false, desc.Layout.Stride, uintptr(a.Offset))
	}

	// the EBO binding is part of the VAO, so unbind the VAO first
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	h := core.Mesh(d.handle())
	d.meshes[h] = m
	return h, nil
}

func (d *Device) UpdateMesh(h core.Mesh, verts []float32, inds []uint32) error {
	m, ok := d.meshes[h]
	if !ok {
		return fmt.Errorf("gl: unknown mesh %d", h)
	}
	gl.BindVertexArray(m.vao)
	if len(verts) > 0 {
		gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
		if len(verts) > m.vcap {
			gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(verts), gl.DYNAMIC_DRAW)
			m.vcap = len(verts)
		} else {
			gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(verts)*4, gl.Ptr(verts))
		}
	}
	if len(inds) > 0 {
		if len(inds) > m.icap {
			gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(inds)*4, gl.Ptr(inds), gl.DYNAMIC_DRAW)
			m.icap = len(inds)
		} else {
			gl.BufferSubData(gl.ELEMENT_ARRAY_BUFFER, 0, len(inds)*4, gl.Ptr(inds))
		}
	}
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return nil
}

func (d *Device) Draw(cmd core.DrawCmd) {
	p, ok := d.pipes[cmd.Pipe]
	if !ok {
		d.warnOnce("pipeline", "gl: draw with unknown pipeline", "pipeline", cmd.Pipe)
		return
	}
	m, ok := d.meshes[cmd.Mesh]
	if !ok {
		d.warnOnce("mesh", "gl: draw with unknown mesh", "mesh", cmd.Mesh)
		return
	}

	if p.desc.DepthTest {
		gl.Enable(gl.DEPTH_TEST)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	if p.desc.Blend {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	} else {
		gl.Disable(gl.BLEND)
	}

	gl.UseProgram(p.program)
	for name, v := range cmd.Uniforms {
		d.setUniform(p, name, v)
	}
	for unit, name := range slices.Sorted(maps.Keys(cmd.Samplers)) {
		tex, ok := d.textures[cmd.Samplers[name]]
		if !ok {
			continue
		}
		gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
		gl.BindTexture(gl.TEXTURE_2D, tex.id)
		gl.Uniform1i(p.location(name), int32(unit))
	}

	gl.BindVertexArray(m.vao)
	gl.DrawElementsWithOffset(gl.TRIANGLES, int32(cmd.IndexCount), gl.UNSIGNED_INT, 0)
	gl.BindVertexArray(0)
	gl.UseProgram(0)
}

func (d *Device) setUniform(p *pipeline, name string, v any) {
	loc := p.location(name)
	if loc < 0 {
		return
	}
	switch u := v.(type) {
	case mgl32.Mat4:
		gl.UniformMatrix4fv(loc, 1, false, &u[0])
	case float32:
		gl.Uniform1f(loc, u)
	case int32:
		gl.Uniform1i(loc, u)
	case [4]float32:
		gl.Uniform4f(loc, u[0], u[1], u[2], u[3])
	case colors.Color:
		gl.Uniform4f(loc, u[0], u[1], u[2], u[3])
	default:
		d.warnOnce("uniform:"+name, "gl: unsupported uniform type", "name", name, "type", fmt.Sprintf("%T", v))
	}
}

func (p *pipeline) location(name string) int32 {
	if loc, ok := p.locs[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(p.program, gl.Str(name+"\x00"))
	p.locs[name] = loc
	return loc
}

func (d *Device) warnOnce(key, msg string, args ...any) {
	if d.warned[key] {
		return
	}
	d.warned[key] = true
	core.Logger().Warn(msg, args...)
}

func (d *Device) Clear(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (d *Device) Resize(w, h int) {
	gl.Viewport(0, 0, int32(w), int32(h))
}

func (d *Device) GPUVendor() string   { return gl.GoStr(gl.GetString(gl.VENDOR)) }
func (d *Device) GPURenderer() string { return gl.GoStr(gl.GetString(gl.RENDERER)) }
func (d *Device) GPUVersion() string  { return gl.GoStr(gl.GetString(gl.VERSION)) }

func (d *Device) Shutdown() {
	for h, m := range d.meshes {
		gl.DeleteBuffers(1, &m.vbo)
		gl.DeleteBuffers(1, &m.ebo)
		gl.DeleteVertexArrays(1, &m.vao)
		delete(d.meshes, h)
	}
	for h, t := range d.textures {
		gl.DeleteTextures(1, &t.id)
		delete(d.textures, h)
	}
	for h, p := range d.pipes {
		gl.DeleteProgram(p.program)
		delete(d.pipes, h)
	}
}

func filter(s string) int32 {
	if s == "nearest" {
		return gl.NEAREST
	}
	return gl.LINEAR
}

func wrap(s string) int32 {
	if s == "repeat" {
		return gl.REPEAT
	}
	return gl.CLAMP_TO_EDGE
}

func attribType(core.AttribType) uint32 { return gl.FLOAT }

// --- Shader utilities ---

func makeShader(src string, shaderType uint32) (uint32, error) {
	if !strings.HasSuffix(src, "\x00") {
		src += "\x00"
	}
	sh := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	defer free()
	gl.ShaderSource(sh, 1, csrc, nil)
	gl.CompileShader(sh)

	var status int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen))
		gl.GetShaderInfoLog(sh, logLen, nil, gl.Str(log))
		gl.DeleteShader(sh)
		return 0, fmt.Errorf("shader compile error: %s", log)
	}
	return sh, nil
}

func makeProgram(vsSrc, fsSrc string) (uint32, error) {
	vs, err := makeShader(vsSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fs, err := makeShader(fsSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vs)
		return 0, err
	}
	prog := gl.CreateProgram()
	gl.AttachShader(prog, vs)
	gl.AttachShader(prog, fs)
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)

	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("program link error: %s", log)
	}
	return prog, nil
}
