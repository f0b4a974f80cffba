// Package scene renders indexed meshes with per-part materials.
package scene

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/rileyalankirk/soda-can/internal/engine/shader"
	"github.com/rileyalankirk/soda-can/internal/engine/texture"
)

// Mode selects the primitive topology for a mesh.
type Mode int

const (
	ModeTriangles Mode = iota
	ModeTriangleStrip
)

// Part is a contiguous index run [Start, Start+Count) drawn with one
// material. Texture 0 falls back to the renderer's white texture.
type Part struct {
	Start   int32
	Count   int32
	Ambient mgl32.Vec3
	Diffuse mgl32.Vec3
	Opacity float32
	Texture uint32
}

// MeshData is the CPU-side mesh handed to the renderer. Normals must be
// index-aligned with Positions; TexCoords may be nil.
type MeshData struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	TexCoords []mgl32.Vec2
	Indices   []uint32
	Mode      Mode
	Parts     []Part
}

// meshVertex is the interleaved GPU vertex format.
type meshVertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

const meshVertexShader = `#version 410 core
layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aTexCoord;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;

out vec3 vNormal;
out vec2 vTexCoord;

void main() {
    vNormal = mat3(uModel) * aNormal;
    vTexCoord = aTexCoord;
    gl_Position = uProjection * uView * uModel * vec4(aPosition, 1.0);
}
`

const meshFragmentShader = `#version 410 core
in vec3 vNormal;
in vec2 vTexCoord;

uniform sampler2D uTexture;
uniform vec3 uLightDir;
uniform vec3 uAmbient;
uniform vec3 uDiffuse;
uniform float uOpacity;

out vec4 FragColor;

void main() {
    vec3 normal = normalize(vNormal);
    vec3 lightDir = normalize(uLightDir);
    float diff = max(dot(normal, lightDir), 0.0);
    vec4 tex = texture(uTexture, vTexCoord);
    vec3 result = (uAmbient * 0.4 + diff * uDiffuse * 0.8) * tex.rgb;
    FragColor = vec4(result, tex.a * uOpacity);
}
`

// Renderer draws uploaded meshes with a single directional light.
type Renderer struct {
	program uint32

	// Uniform locations
	locModel      int32
	locView       int32
	locProjection int32
	locLightDir   int32
	locAmbient    int32
	locDiffuse    int32
	locOpacity    int32
	locTexture    int32

	// Mesh resources
	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32
	glMode     uint32
	parts      []Part

	// Directional light in world space
	LightDir mgl32.Vec3

	fallbackTex uint32

	// Replaces every part's texture when nonzero (label cycling)
	overrideTex uint32
}

// NewRenderer compiles the mesh shader and allocates shared resources.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{
		LightDir: mgl32.Vec3{0.5, 1.0, 0.5},
	}

	program, err := shader.CompileProgram(meshVertexShader, meshFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("mesh shader: %w", err)
	}
	r.program = program

	r.locModel = shader.MustGetUniform(program, "uModel")
	r.locView = shader.MustGetUniform(program, "uView")
	r.locProjection = shader.MustGetUniform(program, "uProjection")
	r.locLightDir = shader.MustGetUniform(program, "uLightDir")
	r.locAmbient = shader.MustGetUniform(program, "uAmbient")
	r.locDiffuse = shader.MustGetUniform(program, "uDiffuse")
	r.locOpacity = shader.MustGetUniform(program, "uOpacity")
	r.locTexture = shader.MustGetUniform(program, "uTexture")

	r.fallbackTex = texture.White()

	return r, nil
}

// Upload replaces the current mesh with data. Interleaves the attribute
// streams into one VBO; missing texcoords become (0,0).
func (r *Renderer) Upload(data MeshData) error {
	if len(data.Positions) == 0 || len(data.Indices) == 0 {
		return fmt.Errorf("empty mesh")
	}
	if len(data.Normals) != len(data.Positions) {
		return fmt.Errorf("normal count %d does not match position count %d",
			len(data.Normals), len(data.Positions))
	}

	r.clearMesh()

	vertices := make([]meshVertex, len(data.Positions))
	for i, p := range data.Positions {
		vertices[i].Position = [3]float32(p)
		vertices[i].Normal = [3]float32(data.Normals[i])
		if data.TexCoords != nil {
			vertices[i].TexCoord = [2]float32(data.TexCoords[i])
		}
	}

	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)

	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*int(unsafe.Sizeof(meshVertex{})), unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	gl.GenBuffers(1, &r.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data.Indices)*4, unsafe.Pointer(&data.Indices[0]), gl.STATIC_DRAW)

	stride := int32(unsafe.Sizeof(meshVertex{}))
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 12)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, 24)
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)

	r.indexCount = int32(len(data.Indices))
	r.glMode = gl.TRIANGLES
	if data.Mode == ModeTriangleStrip {
		r.glMode = gl.TRIANGLE_STRIP
	}

	r.parts = data.Parts
	if len(r.parts) == 0 {
		r.parts = []Part{{
			Start:   0,
			Count:   r.indexCount,
			Ambient: mgl32.Vec3{1, 1, 1},
			Diffuse: mgl32.Vec3{1, 1, 1},
			Opacity: 1,
		}}
	}

	return nil
}

// SetTextureOverride forces all parts to draw with tex. Zero restores
// per-part textures.
func (r *Renderer) SetTextureOverride(tex uint32) {
	r.overrideTex = tex
}

// Draw renders the current mesh with the given transforms.
func (r *Renderer) Draw(model, view, projection mgl32.Mat4) {
	if r.vao == 0 || r.indexCount == 0 {
		return
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	gl.UseProgram(r.program)

	gl.UniformMatrix4fv(r.locModel, 1, false, &model[0])
	gl.UniformMatrix4fv(r.locView, 1, false, &view[0])
	gl.UniformMatrix4fv(r.locProjection, 1, false, &projection[0])
	gl.Uniform3f(r.locLightDir, r.LightDir[0], r.LightDir[1], r.LightDir[2])

	gl.ActiveTexture(gl.TEXTURE0)
	gl.Uniform1i(r.locTexture, 0)
	gl.BindVertexArray(r.vao)

	for _, part := range r.parts {
		gl.Uniform3f(r.locAmbient, part.Ambient[0], part.Ambient[1], part.Ambient[2])
		gl.Uniform3f(r.locDiffuse, part.Diffuse[0], part.Diffuse[1], part.Diffuse[2])
		gl.Uniform1f(r.locOpacity, part.Opacity)

		tex := part.Texture
		if r.overrideTex != 0 {
			tex = r.overrideTex
		}
		if tex == 0 {
			tex = r.fallbackTex
		}
		gl.BindTexture(gl.TEXTURE_2D, tex)

		//nolint:govet // Valid OpenGL offset pointer usage
		gl.DrawElements(r.glMode, part.Count, gl.UNSIGNED_INT, unsafe.Pointer(uintptr(part.Start*4)))
	}

	gl.BindVertexArray(0)
}

func (r *Renderer) clearMesh() {
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
		r.vao = 0
	}
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
		r.vbo = 0
	}
	if r.ebo != 0 {
		gl.DeleteBuffers(1, &r.ebo)
		r.ebo = 0
	}
	r.indexCount = 0
	r.parts = nil
}

// Destroy releases all OpenGL resources.
func (r *Renderer) Destroy() {
	r.clearMesh()

	if r.fallbackTex != 0 {
		gl.DeleteTextures(1, &r.fallbackTex)
		r.fallbackTex = 0
	}
	if r.program != 0 {
		gl.DeleteProgram(r.program)
		r.program = 0
	}
}
