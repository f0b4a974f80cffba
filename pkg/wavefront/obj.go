package wavefront

import (
	gomath "math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/rileyalankirk/soda-can/pkg/geometry"
)

// rawObject and rawPart carry the object/part structure before material
// names have been resolved against loaded libraries.
type rawObject struct {
	name  string
	parts []rawPart
}

type rawPart struct {
	start    int
	count    int
	material string // empty when no usemtl was active
	libs     int    // material libraries queued when the part's usemtl ran
}

// parseResult is the outcome of the synchronous OBJ text pass.
type parseResult struct {
	out      *meshBuilder
	objects  []rawObject
	libs     []string // material library queue, deduplicated, in order
	warnings int
}

type objParser struct {
	log *zap.Logger

	// Source element lists, 0-based after resolution (1-based in the file).
	positions []mgl32.Vec3
	texcoords []mgl32.Vec2
	normals   []mgl32.Vec3

	out *meshBuilder

	objects   []rawObject
	partOpen  bool
	partStart int
	material  string
	matLibs   int // library queue length snapshotted at the last usemtl

	libs    []string
	libSeen map[string]bool

	sawTexcoord    bool
	missingNormals bool
	warnings       int
}

// parseOBJ runs the text pass over OBJ file contents. Lines are processed
// in order; blank and comment lines keep their slot so diagnostics stay
// 1-based against the source.
func parseOBJ(data []byte, log *zap.Logger) *parseResult {
	p := &objParser{
		log:     log,
		out:     newMeshBuilder(),
		libSeen: make(map[string]bool),
	}

	for ln, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		p.command(fields[0], fields[1:], ln+1)
	}
	return p.finish()
}

func (p *objParser) command(cmd string, args []string, line int) {
	switch cmd {
	case "v":
		p.vertex(args, line)
	case "vn":
		p.normal(args, line)
	case "vt":
		p.texcoord(args, line)
	case "f":
		p.face(args, line)
	case "o":
		p.object(args, line)
	case "usemtl":
		p.usemtl(args, line)
	case "mtllib":
		p.mtllib(args, line)
	default:
		p.warn(line, "unsupported command ignored", zap.String("command", cmd))
	}
}

func (p *objParser) warn(line int, msg string, fields ...zap.Field) {
	p.warnings++
	p.log.Warn(msg, append([]zap.Field{zap.Int("line", line)}, fields...)...)
}

// vertex parses `v x y z [w]`. A homogeneous w other than 1 is ignored
// with a warning; the position itself is kept.
func (p *objParser) vertex(args []string, line int) {
	if len(args) < 3 || len(args) > 4 {
		p.warn(line, "vertex with wrong argument count dropped", zap.Int("args", len(args)))
		return
	}
	v, ok := parseFloats3(args[:3])
	if !ok {
		p.warn(line, "unparseable vertex dropped")
		return
	}
	if len(args) == 4 {
		w, err := strconv.ParseFloat(args[3], 32)
		if err != nil || gomath.Abs(w-1) > 1e-6 {
			p.warn(line, "vertex w component ignored", zap.String("w", args[3]))
		}
	}
	p.positions = append(p.positions, v)
}

// normal parses `vn x y z`.
func (p *objParser) normal(args []string, line int) {
	if len(args) != 3 {
		p.warn(line, "normal with wrong argument count dropped", zap.Int("args", len(args)))
		return
	}
	n, ok := parseFloats3(args)
	if !ok {
		p.warn(line, "unparseable normal dropped")
		return
	}
	p.normals = append(p.normals, n)
}

// texcoord parses `vt u v [w]`. A depth w other than 0 is ignored with a
// warning; only u and v are kept.
func (p *objParser) texcoord(args []string, line int) {
	if len(args) < 2 || len(args) > 3 {
		p.warn(line, "texcoord with wrong argument count dropped", zap.Int("args", len(args)))
		return
	}
	u, err1 := strconv.ParseFloat(args[0], 32)
	v, err2 := strconv.ParseFloat(args[1], 32)
	if err1 != nil || err2 != nil {
		p.warn(line, "unparseable texcoord dropped")
		return
	}
	if len(args) == 3 {
		w, err := strconv.ParseFloat(args[2], 32)
		if err != nil || gomath.Abs(w) > 1e-6 {
			p.warn(line, "texcoord w component ignored", zap.String("w", args[2]))
		}
	}
	p.texcoords = append(p.texcoords, mgl32.Vec2{float32(u), float32(v)})
}

// corner is a resolved face-corner reference; absent channels are -1.
type corner struct {
	v, t, n int
}

// face parses `f a b c`. Only triangles are accepted; the reference form
// (v, v/t, v//n, v/t/n) is fixed by the first corner and must hold for the
// other two. Any unresolvable corner drops the whole face.
func (p *objParser) face(args []string, line int) {
	if len(args) < 3 {
		p.warn(line, "face with fewer than 3 corners dropped", zap.Int("corners", len(args)))
		return
	}
	if len(args) > 3 {
		p.warn(line, "non-triangular face dropped", zap.Int("corners", len(args)))
		return
	}

	var corners [3]corner
	var hasT, hasN bool
	for i, arg := range args {
		parts := strings.Split(arg, "/")
		if len(parts) > 3 || parts[0] == "" {
			p.warn(line, "malformed face corner, face dropped", zap.String("corner", arg))
			return
		}
		ht := len(parts) > 1 && parts[1] != ""
		hn := len(parts) > 2 && parts[2] != ""
		if i == 0 {
			hasT, hasN = ht, hn
		} else if ht != hasT || hn != hasN {
			p.warn(line, "mixed corner forms, face dropped", zap.String("corner", arg))
			return
		}

		c := corner{v: -1, t: -1, n: -1}
		var ok bool
		if c.v, ok = resolveIndex(parts[0], len(p.positions)); !ok {
			p.warn(line, "vertex index out of range, face dropped", zap.String("index", parts[0]))
			return
		}
		if ht {
			if c.t, ok = resolveIndex(parts[1], len(p.texcoords)); !ok {
				p.warn(line, "texcoord index out of range, face dropped", zap.String("index", parts[1]))
				return
			}
		}
		if hn {
			if c.n, ok = resolveIndex(parts[2], len(p.normals)); !ok {
				p.warn(line, "normal index out of range, face dropped", zap.String("index", parts[2]))
				return
			}
		}
		corners[i] = c
	}

	if !p.partOpen {
		p.partOpen = true
		p.partStart = len(p.out.indices)
	}
	for _, c := range corners {
		var uv mgl32.Vec2
		if c.t >= 0 {
			uv = p.texcoords[c.t]
		}
		var nrm mgl32.Vec3
		if c.n >= 0 {
			nrm = p.normals[c.n]
		}
		idx := p.out.add(vertexKey{c.v, c.t, c.n}, p.positions[c.v], uv, nrm)
		p.out.indices = append(p.out.indices, idx)
	}

	if hasT {
		p.sawTexcoord = true
	}
	if !hasN {
		p.missingNormals = true
	}
}

// resolveIndex turns a 1-based OBJ index token into a 0-based absolute
// index. Negative values count back from the current end of the list.
func resolveIndex(tok string, length int) (int, bool) {
	val, err := strconv.Atoi(tok)
	if err != nil || val == 0 {
		return 0, false
	}
	idx := val - 1
	if val < 0 {
		idx = length + val
	}
	if idx < 0 || idx >= length {
		return 0, false
	}
	return idx, true
}

func (p *objParser) object(args []string, line int) {
	if len(args) < 1 {
		p.warn(line, "object with no name ignored")
		return
	}
	p.closePart()
	p.objects = append(p.objects, rawObject{name: args[0]})
}

func (p *objParser) usemtl(args []string, line int) {
	if len(args) < 1 {
		p.warn(line, "usemtl with no name ignored")
		return
	}
	p.closePart()
	p.material = args[0]
	// Libraries queued after this point must not retroactively apply.
	p.matLibs = len(p.libs)
}

func (p *objParser) mtllib(args []string, line int) {
	if len(args) < 1 {
		p.warn(line, "mtllib with no file names ignored")
		return
	}
	for _, name := range args {
		if p.libSeen[name] {
			continue
		}
		p.libSeen[name] = true
		p.libs = append(p.libs, name)
	}
}

// closePart finalizes the open part; an empty run is discarded.
func (p *objParser) closePart() {
	if !p.partOpen {
		return
	}
	p.partOpen = false
	count := len(p.out.indices) - p.partStart
	if count == 0 {
		return
	}
	if len(p.objects) == 0 {
		// Faces before any `o` line belong to an implicit unnamed object.
		p.objects = append(p.objects, rawObject{})
	}
	obj := &p.objects[len(p.objects)-1]
	obj.parts = append(obj.parts, rawPart{
		start:    p.partStart,
		count:    count,
		material: p.material,
		libs:     p.matLibs,
	})
}

func (p *objParser) finish() *parseResult {
	p.closePart()

	if !p.sawTexcoord {
		p.out.texcoords = nil
	}
	if p.missingNormals && len(p.out.indices) > 0 {
		// Faces without explicit normals fall back to normals computed
		// from the mesh itself; explicit ones are never overwritten.
		computed := geometry.Normals(p.out.positions, p.out.indices, geometry.TriangleList, nil)
		for i, explicit := range p.out.explicit {
			if !explicit {
				p.out.normals[i] = computed[i]
			}
		}
	}

	// Objects that ended up with no parts are dropped.
	objects := p.objects[:0]
	for _, obj := range p.objects {
		if len(obj.parts) > 0 {
			objects = append(objects, obj)
		}
	}

	return &parseResult{
		out:      p.out,
		objects:  objects,
		libs:     p.libs,
		warnings: p.warnings,
	}
}

func parseFloats3(args []string) (mgl32.Vec3, bool) {
	var v mgl32.Vec3
	for i, arg := range args {
		f, err := strconv.ParseFloat(arg, 32)
		if err != nil {
			return mgl32.Vec3{}, false
		}
		v[i] = float32(f)
	}
	return v, true
}
