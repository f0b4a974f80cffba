package wavefront

import (
	"bytes"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync"

	"go.uber.org/zap"

	// Texture map formats decodable out of the box.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
)

// Loader fetches files referenced by a model: the OBJ file itself, its
// material libraries and their texture images. Names are resolved the way
// the loader chooses, usually relative to the model's directory.
//
// Load may be called from multiple goroutines at once.
type Loader interface {
	Load(name string) ([]byte, error)
}

type fsLoader struct {
	fsys fs.FS
}

// DirLoader returns a Loader reading files below dir.
func DirLoader(dir string) Loader {
	return fsLoader{fsys: os.DirFS(dir)}
}

// FSLoader returns a Loader reading from fsys.
func FSLoader(fsys fs.FS) Loader {
	return fsLoader{fsys: fsys}
}

func (l fsLoader) Load(name string) ([]byte, error) {
	// Model files in the wild reference textures with backslash paths.
	name = path.Clean(strings.ReplaceAll(name, "\\", "/"))
	return fs.ReadFile(l.fsys, name)
}

func decodeImage(data []byte) (image.Image, string, error) {
	return image.Decode(bytes.NewReader(data))
}

// Load reads and resolves an OBJ model through loader. After the text
// pass, every queued material library is fetched concurrently and, as each
// library parses, every texture it references is fetched concurrently too;
// Load returns only once all transitive fetches have completed or failed.
// Completion order across sibling fetches is never assumed.
//
// A failed library or texture fetch is logged and skipped without
// aborting; only an unreadable OBJ file is an error. A model that queued
// no libraries involves no concurrency at all.
func Load(loader Loader, name string, opts ...Option) (*Model, error) {
	o := buildOptions(opts)

	data, err := loader.Load(name)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	res := parseOBJ(data, o.log)
	if len(res.out.indices) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyModel)
	}

	// libs is index-aligned with the queue order from the text pass; a
	// failed load leaves a nil slot and the join still completes.
	libs := make([]*Library, len(res.libs))
	extraWarnings := 0

	var wg sync.WaitGroup
	var mu sync.Mutex
	for i, libName := range res.libs {
		wg.Add(1)
		go func(i int, libName string) {
			defer wg.Done()
			data, err := loader.Load(libName)
			if err != nil {
				mu.Lock()
				extraWarnings++
				mu.Unlock()
				o.log.Warn("material library failed to load",
					zap.String("library", libName), zap.Error(err))
				return
			}
			lib := ParseMTL(data, o.log)
			mu.Lock()
			libs[i] = lib
			extraWarnings += lib.Warnings
			mu.Unlock()

			for _, mat := range lib.Materials {
				for kind, file := range mat.Maps {
					wg.Add(1)
					go func(mat *Material, kind MapKind, file string) {
						defer wg.Done()
						data, err := loader.Load(file)
						if err != nil {
							mu.Lock()
							extraWarnings++
							mu.Unlock()
							o.log.Warn("texture failed to load",
								zap.String("texture", file), zap.Error(err))
							return
						}
						img, err := o.decode(file, data)
						if err != nil {
							mu.Lock()
							extraWarnings++
							mu.Unlock()
							o.log.Warn("texture failed to decode",
								zap.String("texture", file), zap.Error(err))
							return
						}
						mu.Lock()
						if mat.Textures == nil {
							mat.Textures = make(map[MapKind]image.Image)
						}
						mat.Textures[kind] = img
						mu.Unlock()
					}(mat, kind, file)
				}
			}
		}(i, libName)
	}
	wg.Wait()

	model := assemble(res, libs, o.log)
	model.Warnings += extraWarnings
	return model, nil
}

// LoadAsync runs Load in the background and delivers the result through
// done, which is called exactly once.
func LoadAsync(loader Loader, name string, done func(*Model, error), opts ...Option) {
	go func() {
		done(Load(loader, name, opts...))
	}()
}

// assemble resolves part material names against the loaded libraries and
// produces the final model. A part only sees the libraries that were
// queued before its usemtl ran.
func assemble(res *parseResult, libs []*Library, log *zap.Logger) *Model {
	model := &Model{
		Positions: res.out.positions,
		TexCoords: res.out.texcoords,
		Normals:   res.out.normals,
		Indices:   res.out.indices,
		Materials: make(map[string]*Material),
		Warnings:  res.warnings,
	}

	for _, lib := range libs {
		if lib == nil {
			continue
		}
		for name, mat := range lib.Materials {
			if _, ok := model.Materials[name]; !ok {
				model.Materials[name] = mat
			}
		}
	}

	def := DefaultMaterial()
	resolve := func(p rawPart) *Material {
		if p.material == "" {
			return def
		}
		for _, lib := range libs[:p.libs] {
			if lib == nil {
				continue
			}
			if mat, ok := lib.Materials[p.material]; ok {
				return mat
			}
		}
		model.Warnings++
		log.Warn("material not found, using default", zap.String("material", p.material))
		return def
	}

	for _, raw := range res.objects {
		obj := Object{Name: raw.name}
		for _, p := range raw.parts {
			obj.Parts = append(obj.Parts, Part{
				Start:    p.start,
				Count:    p.count,
				Material: resolve(p),
			})
		}
		model.Objects = append(model.Objects, obj)
	}
	return model
}
