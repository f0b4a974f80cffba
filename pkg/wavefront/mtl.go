package wavefront

import (
	"image"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// MapKind names a well-known texture-map slot of a material.
type MapKind string

const (
	MapAmbient      MapKind = "ambient"
	MapDiffuse      MapKind = "diffuse"
	MapSpecular     MapKind = "specular"
	MapShininess    MapKind = "shininess"
	MapOpacity      MapKind = "opacity"
	MapDisplacement MapKind = "displacement"
	MapDecal        MapKind = "decal"
	MapBump         MapKind = "bump"
	MapReflection   MapKind = "reflection"
)

// mapCommands maps MTL texture commands (and their common aliases) to
// material map slots.
var mapCommands = map[string]MapKind{
	"map_Ka":   MapAmbient,
	"map_Kd":   MapDiffuse,
	"map_Ks":   MapSpecular,
	"map_Ns":   MapShininess,
	"map_d":    MapOpacity,
	"disp":     MapDisplacement,
	"map_disp": MapDisplacement,
	"decal":    MapDecal,
	"bump":     MapBump,
	"map_bump": MapBump,
	"refl":     MapReflection,
	"map_refl": MapReflection,
}

// Material is one MTL material definition. Known properties get typed
// fields; anything unrecognized lands in Extra keyed by its command name.
type Material struct {
	Name      string
	Ambient   mgl32.Vec3
	Diffuse   mgl32.Vec3
	Specular  mgl32.Vec3
	Opacity   float32
	Shininess float32

	// Maps holds texture file references per slot; Textures holds the
	// decoded images for the references that loaded successfully.
	Maps     map[MapKind]string
	Textures map[MapKind]image.Image

	Extra map[string][]string
}

// DefaultMaterial returns the material substituted for unresolvable
// names: opaque white with shininess 10.
func DefaultMaterial() *Material {
	return &Material{
		Name:      "default",
		Ambient:   mgl32.Vec3{1, 1, 1},
		Diffuse:   mgl32.Vec3{1, 1, 1},
		Specular:  mgl32.Vec3{1, 1, 1},
		Opacity:   1,
		Shininess: 10,
	}
}

// Library is a parsed MTL material library.
type Library struct {
	Materials map[string]*Material
	Warnings  int
}

// ParseMTL parses MTL file contents. Malformed lines are dropped with a
// warning; properties appearing before any newmtl are ignored.
func ParseMTL(data []byte, log *zap.Logger) *Library {
	lib := &Library{Materials: make(map[string]*Material)}
	if log == nil {
		log = zap.NewNop()
	}

	var cur *Material
	warn := func(line int, msg string, fields ...zap.Field) {
		lib.Warnings++
		log.Warn(msg, append([]zap.Field{zap.Int("line", line)}, fields...)...)
	}

	for ln, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		if cmd == "newmtl" {
			if len(args) < 1 {
				warn(ln+1, "newmtl with no name ignored")
				continue
			}
			cur = DefaultMaterial()
			cur.Name = args[0]
			lib.Materials[args[0]] = cur
			continue
		}
		if cur == nil {
			warn(ln+1, "material property before newmtl ignored", zap.String("command", cmd))
			continue
		}

		if kind, ok := mapCommands[cmd]; ok {
			if len(args) < 1 {
				warn(ln+1, "texture map with no file name ignored", zap.String("command", cmd))
				continue
			}
			// The last token is taken as the filename; MTL option flags
			// like -s and -o are not interpreted.
			if cur.Maps == nil {
				cur.Maps = make(map[MapKind]string)
			}
			cur.Maps[kind] = args[len(args)-1]
			continue
		}

		switch cmd {
		case "Ka", "Kd", "Ks":
			if len(args) < 3 {
				warn(ln+1, "color with too few components dropped", zap.String("command", cmd))
				continue
			}
			color, ok := parseFloats3(args[:3])
			if !ok {
				warn(ln+1, "unparseable color dropped", zap.String("command", cmd))
				continue
			}
			switch cmd {
			case "Ka":
				cur.Ambient = color
			case "Kd":
				cur.Diffuse = color
			case "Ks":
				cur.Specular = color
			}
		case "d":
			v, ok := parseFloat1(args)
			if !ok {
				warn(ln+1, "unparseable opacity dropped")
				continue
			}
			cur.Opacity = v
		case "Tr":
			// Transparency is the complement of dissolve.
			v, ok := parseFloat1(args)
			if !ok {
				warn(ln+1, "unparseable transparency dropped")
				continue
			}
			cur.Opacity = 1 - v
		case "Ns":
			v, ok := parseFloat1(args)
			if !ok {
				warn(ln+1, "unparseable shininess dropped")
				continue
			}
			cur.Shininess = v
		default:
			if cur.Extra == nil {
				cur.Extra = make(map[string][]string)
			}
			cur.Extra[cmd] = args
		}
	}
	return lib
}

func parseFloat1(args []string) (float32, bool) {
	if len(args) < 1 {
		return 0, false
	}
	v, err := strconv.ParseFloat(args[0], 32)
	if err != nil {
		return 0, false
	}
	return float32(v), true
}
