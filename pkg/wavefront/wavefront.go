// Package wavefront parses Wavefront OBJ models and their MTL material
// libraries into unified indexed buffers. Malformed lines are dropped with
// a warning and parsing continues; only an unreadable top-level OBJ file
// aborts a load.
package wavefront

import (
	"errors"
	"image"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Package errors.
var (
	ErrEmptyModel = errors.New("model contains no faces")
)

// Model is a fully resolved OBJ model: position/texcoord/normal sequences
// index-aligned with each other, one shared index sequence, and the object
// and material structure laid over it. Buffers are final on delivery.
type Model struct {
	Positions []mgl32.Vec3
	TexCoords []mgl32.Vec2 // nil when no face in the file carried texcoords
	Normals   []mgl32.Vec3
	Indices   []uint32
	Objects   []Object
	Materials map[string]*Material
	Warnings  int // count of dropped/ignored constructs
}

// Object is a named group of parts.
type Object struct {
	Name  string // empty for the implicit unnamed object
	Parts []Part
}

// Part is a contiguous index run [Start, Start+Count) drawn with one
// material. Material is never nil; unresolvable names get the default.
type Part struct {
	Start    int
	Count    int
	Material *Material
}

// ImageDecoder turns raw texture file contents into an image. The name is
// the file reference from the MTL line, useful for extension sniffing.
type ImageDecoder func(name string, data []byte) (image.Image, error)

type options struct {
	log    *zap.Logger
	decode ImageDecoder
}

// Option configures a load.
type Option func(*options)

// WithLogger routes parse warnings and load failures to log.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithImageDecoder replaces the default stdlib image decoder used for
// texture maps, e.g. to add TGA support.
func WithImageDecoder(decode ImageDecoder) Option {
	return func(o *options) {
		if decode != nil {
			o.decode = decode
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		log:    zap.NewNop(),
		decode: stdImageDecoder,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func stdImageDecoder(_ string, data []byte) (image.Image, error) {
	img, _, err := decodeImage(data)
	return img, err
}
