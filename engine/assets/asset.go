package assets

import (
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"github.com/spaghettifunk/contentbuild/engine/resources"
)

// ID uniquely identifies an asset. IDs come from the content manifest.
type ID uint32

// Type is the asset type code stored in the manifest.
type Type uint32

const (
	TypeUnknown Type = 0x0
	TypeShader  Type = 0x1
	TypeTexture Type = 0x2
	TypeModel   Type = 0x3
)

func (t Type) String() string {
	switch t {
	case TypeUnknown:
		return "unknown"
	case TypeShader:
		return "shader"
	case TypeTexture:
		return "texture"
	case TypeModel:
		return "model"
	default:
		return fmt.Sprintf("type(%d)", uint32(t))
	}
}

// State is where an asset is in its load cycle.
type State int32

const (
	StateNotLoaded State = iota
	StateQueued
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotLoaded:
		return "not loaded"
	case StateQueued:
		return "queued"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Record exists for every manifest row whether or not the asset is loaded.
type Record struct {
	id   ID
	typ  Type
	path string

	state atomic.Int32
	refs  atomic.Int32

	mu       sync.RWMutex
	resource *resources.Resource
	err      error
}

func newRecord(id ID, typ Type, path string) *Record {
	return &Record{id: id, typ: typ, path: path}
}

func (r *Record) State() State {
	return State(r.state.Load())
}

func (r *Record) setLoaded(res *resources.Resource) {
	r.mu.Lock()
	r.resource = res
	r.err = nil
	r.mu.Unlock()
	r.state.Store(int32(StateLoaded))
}

func (r *Record) setFailed(err error) {
	r.mu.Lock()
	r.resource = nil
	r.err = err
	r.mu.Unlock()
	r.state.Store(int32(StateFailed))
}

// Handle is a reference-counted view of a Record. The zero Handle is invalid.
type Handle struct {
	rec *Record
}

func newHandle(rec *Record) Handle {
	if rec != nil {
		rec.refs.Add(1)
	}
	return Handle{rec: rec}
}

// Valid reports whether the handle points at an asset.
func (h Handle) Valid() bool {
	return h.rec != nil
}

func (h Handle) ID() ID {
	if h.rec == nil {
		return 0
	}
	return h.rec.id
}

func (h Handle) Type() Type {
	if h.rec == nil {
		return TypeUnknown
	}
	return h.rec.typ
}

// Path is the lookup path from the manifest.
func (h Handle) Path() string {
	if h.rec == nil {
		return ""
	}
	return h.rec.path
}

func (h Handle) State() State {
	if h.rec == nil {
		return StateNotLoaded
	}
	return h.rec.State()
}

// Loaded reports whether the asset data is available.
func (h Handle) Loaded() bool {
	return h.State() == StateLoaded
}

// Resource returns the loaded data, or nil while the asset is not loaded.
func (h Handle) Resource() *resources.Resource {
	if h.rec == nil {
		return nil
	}
	h.rec.mu.RLock()
	defer h.rec.mu.RUnlock()
	return h.rec.resource
}

// Err is the error of the last failed load.
func (h Handle) Err() error {
	if h.rec == nil {
		return nil
	}
	h.rec.mu.RLock()
	defer h.rec.mu.RUnlock()
	return h.rec.err
}

// RefCount is the number of live handles taken from the manager.
func (h Handle) RefCount() int32 {
	if h.rec == nil {
		return 0
	}
	return h.rec.refs.Load()
}

// Release drops this handle's reference. The handle is invalid afterwards.
func (h *Handle) Release() {
	if h.rec != nil {
		h.rec.refs.Add(-1)
		h.rec = nil
	}
}

// Asset is the handle returned for content without a dedicated type.
type Asset struct {
	Handle
}

// Bytes returns the raw file contents once loaded.
func (a Asset) Bytes() []byte {
	return bytesOf(a.Resource())
}

// Texture wraps image assets.
type Texture struct {
	Handle
}

// Image returns the decoded image once loaded.
func (t Texture) Image() image.Image {
	if res := t.Resource(); res != nil {
		if img, ok := res.Data.(image.Image); ok {
			return img
		}
	}
	return nil
}

// Model wraps mesh assets.
type Model struct {
	Handle
}

// Bytes returns the raw model file once loaded.
func (m Model) Bytes() []byte {
	return bytesOf(m.Resource())
}

// Shader wraps compiled shader modules.
type Shader struct {
	Handle
}

// Bytecode returns the SPIR-V words once loaded.
func (s Shader) Bytecode() []uint32 {
	if res := s.Resource(); res != nil {
		if code, ok := res.Data.([]uint32); ok {
			return code
		}
	}
	return nil
}

func bytesOf(res *resources.Resource) []byte {
	if res == nil {
		return nil
	}
	b, _ := res.Data.([]byte)
	return b
}
