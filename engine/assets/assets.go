// Package assets is the runtime side of the content pipeline. The AssetManager reads the
// content manifest, keeps a Record for every asset and loads assets on a background
// worker when they are first requested.
package assets

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/spaghettifunk/contentbuild/content/manifest"
	"github.com/spaghettifunk/contentbuild/engine/assets/loaders"
	"github.com/spaghettifunk/contentbuild/engine/containers"
	"github.com/spaghettifunk/contentbuild/engine/core"
)

const DefaultQueueSize = 1024

var (
	ErrAlreadyInitialized = errors.New("asset manager already initialized")
	ErrClosed             = errors.New("asset manager closed")
)

type AssetManager struct {
	// keyed by id since manifest ids need not be dense
	records map[ID]*Record
	loaders map[Type]Loader

	mutex    sync.Mutex
	idle     *sync.Cond
	jobs     *containers.RingQueue[*Record]
	pending  int
	wake     chan struct{}
	done     chan struct{}
	worker   sync.WaitGroup
	started  bool
	isClosed bool
}

var _ Service = (*AssetManager)(nil)

// NewAssetManager creates a manager whose load queue holds up to queueSize jobs.
func NewAssetManager(queueSize int) *AssetManager {
	if queueSize < 1 {
		queueSize = DefaultQueueSize
	}
	am := &AssetManager{
		loaders: make(map[Type]Loader),
		jobs:    containers.NewRingQueue[*Record](queueSize),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	am.idle = sync.NewCond(&am.mutex)
	return am
}

// Initialize reads the manifest at manifestPath and starts the load worker.
func (am *AssetManager) Initialize(manifestPath string) error {
	f, err := os.Open(manifestPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return am.InitializeFrom(f)
}

// InitializeFrom reads manifest rows from r and starts the load worker.
func (am *AssetManager) InitializeFrom(r io.Reader) error {
	rows, err := manifest.Read(r)
	if err != nil {
		return err
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	if am.started {
		return ErrAlreadyInitialized
	}
	if am.isClosed {
		return ErrClosed
	}

	records := make(map[ID]*Record, len(rows))
	for _, row := range rows {
		id := ID(row.ID)
		if _, dup := records[id]; dup {
			return fmt.Errorf("duplicate asset id %d in manifest", row.ID)
		}
		records[id] = newRecord(id, Type(row.Type), row.LookupPath)
	}
	am.records = records

	// Register default loaders unless the game brought its own
	am.registerDefault(TypeShader, &loaders.ShaderLoader{})
	am.registerDefault(TypeTexture, &loaders.TextureLoader{})
	am.registerDefault(TypeModel, &loaders.ModelLoader{})
	am.registerDefault(TypeUnknown, &loaders.BinaryLoader{})

	am.started = true
	am.worker.Add(1)
	go am.start()

	core.LogInfo("asset manager initialized with %d assets", len(rows))
	return nil
}

// RegisterLoader sets the loader used for assetType. Call it before Initialize.
func (am *AssetManager) RegisterLoader(assetType Type, loader Loader) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.loaders[assetType] = loader
}

func (am *AssetManager) registerDefault(assetType Type, loader Loader) {
	if _, ok := am.loaders[assetType]; !ok {
		am.loaders[assetType] = loader
	}
}

// Len is the number of assets in the manifest.
func (am *AssetManager) Len() int {
	return len(am.records)
}

// Get returns a handle without loading the asset. Unknown IDs yield an invalid handle.
func (am *AssetManager) Get(id ID) Handle {
	rec, ok := am.records[id]
	if !ok {
		core.LogWarn("asset id %d is not in the manifest", id)
		return Handle{}
	}
	return newHandle(rec)
}

// GetLoad returns a handle and queues the asset for loading if needed. The load is
// asynchronous.
func (am *AssetManager) GetLoad(id ID) Handle {
	h := am.Get(id)
	if h.Valid() {
		am.Load(h)
	}
	return h
}

// Load queues h for loading. It returns true when the asset is loaded or queued.
func (am *AssetManager) Load(h Handle) bool {
	if !h.Valid() {
		return false
	}
	rec := h.rec
	if rec.State() == StateLoaded {
		return true
	}
	prev := StateNotLoaded
	if !rec.state.CompareAndSwap(int32(StateNotLoaded), int32(StateQueued)) {
		prev = StateFailed
		if !rec.state.CompareAndSwap(int32(StateFailed), int32(StateQueued)) {
			// queued by someone else or loaded in the meantime
			return true
		}
	}

	am.mutex.Lock()
	if am.isClosed || !am.started {
		am.mutex.Unlock()
		rec.state.Store(int32(prev))
		return false
	}
	if err := am.jobs.Enqueue(rec); err != nil {
		am.mutex.Unlock()
		rec.state.Store(int32(prev))
		core.LogWarn("cannot queue asset %d: %v", rec.id, err)
		return false
	}
	am.pending++
	am.mutex.Unlock()

	select {
	case am.wake <- struct{}{}:
	default:
	}
	return true
}

// Unload releases the asset data. The record stays and can be loaded again.
func (am *AssetManager) Unload(h Handle) error {
	if !h.Valid() {
		return nil
	}
	rec := h.rec
	if rec.State() != StateLoaded {
		return nil
	}
	res := h.Resource()

	am.mutex.Lock()
	loader := am.loaders[rec.typ]
	am.mutex.Unlock()

	rec.mu.Lock()
	rec.resource = nil
	rec.mu.Unlock()
	rec.state.Store(int32(StateNotLoaded))

	if loader != nil && res != nil {
		return loader.Unload(res)
	}
	return nil
}

// Flush blocks until every queued load has finished.
func (am *AssetManager) Flush() {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	for am.pending > 0 && !am.isClosed {
		am.idle.Wait()
	}
}

// Shutdown stops the worker. Jobs still queued are dropped and their assets go back to
// not loaded.
func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return ErrClosed
	}
	am.isClosed = true
	am.mutex.Unlock()

	close(am.done)
	am.worker.Wait()

	am.mutex.Lock()
	for !am.jobs.IsEmpty() {
		rec, _ := am.jobs.Dequeue()
		rec.state.CompareAndSwap(int32(StateQueued), int32(StateNotLoaded))
	}
	am.pending = 0
	am.idle.Broadcast()
	am.mutex.Unlock()
	return nil
}

func (am *AssetManager) start() {
	defer am.worker.Done()
	for {
		select {
		case <-am.wake:
			am.drain()
		case <-am.done:
			return
		}
	}
}

func (am *AssetManager) drain() {
	for {
		select {
		case <-am.done:
			return
		default:
		}

		am.mutex.Lock()
		rec, err := am.jobs.Dequeue()
		am.mutex.Unlock()
		if err != nil {
			return
		}

		am.loadAsset(rec)

		am.mutex.Lock()
		am.pending--
		if am.pending <= 0 {
			am.pending = 0
			am.idle.Broadcast()
		}
		am.mutex.Unlock()
	}
}

func (am *AssetManager) loadAsset(rec *Record) {
	// an asset could have finished loading right as the job was queued
	if rec.State() == StateLoaded {
		return
	}

	am.mutex.Lock()
	loader, ok := am.loaders[rec.typ]
	am.mutex.Unlock()
	if !ok {
		err := fmt.Errorf("no loader registered for asset type: %s", rec.typ)
		core.LogError("asset %d (%s): %v", rec.id, rec.path, err)
		rec.setFailed(err)
		return
	}

	res, err := loader.Load(rec.path)
	if err != nil {
		core.LogError("asset %d (%s): %v", rec.id, rec.path, err)
		rec.setFailed(err)
		return
	}
	rec.setLoaded(res)
	core.LogDebug("asset: %s, type: %s loaded", rec.path, rec.typ)
}
