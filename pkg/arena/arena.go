// Package arena provides block-pooled scratch memory for per-sample objects.
//
// Every rendering worker owns a ThreadCache that bump-allocates out of fixed
// size blocks. Blocks move between a single global free list and at most one
// cache at a time, so the common allocation path takes no lock. Memory is
// reclaimed in bulk by Reset; individual pooled allocations are never freed.
//
// Block memory is not scanned by the garbage collector. Only values without
// Go pointers may live in it; New falls back to the heap for anything else.
package arena

import (
	"fmt"
	"reflect"
	"sync"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// DefaultBlockSize is the size in bytes of a pooled block.
const DefaultBlockSize = 4096

// wordSize is the alignment guaranteed by a block's backing []uint64.
const wordSize = 8

type block struct {
	mem []uint64
}

func (b *block) base() uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b.mem)))
}

// Allocator owns the global free list and the per-worker caches.
type Allocator struct {
	blockSize int

	cacheMu sync.RWMutex
	caches  map[int]*ThreadCache

	// freeMu guards free, created and cached
	freeMu  sync.Mutex
	free    []*block
	created int
	cached  int

	largeMu sync.Mutex
	large   map[unsafe.Pointer][]uint64
}

// ThreadCache is the allocation state of a single worker. It must only be
// used from the goroutine that owns the worker ID it was created for.
type ThreadCache struct {
	owner  *Allocator
	worker int
	blocks []*block
	offset int
}

// Stats is a snapshot of the allocator's block accounting.
type Stats struct {
	BlockSize     int
	CreatedBlocks int
	FreeBlocks    int
	CachedBlocks  int
	LargeLive     int
}

// New creates an allocator with the given block size, rounded up to a whole
// number of words. A non-positive size selects DefaultBlockSize.
func New(blockSize int) *Allocator {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	blockSize = alignUp(blockSize, wordSize)
	return &Allocator{
		blockSize: blockSize,
		caches:    make(map[int]*ThreadCache),
		large:     make(map[unsafe.Pointer][]uint64),
	}
}

// BlockSize returns the pooled block size in bytes.
func (a *Allocator) BlockSize() int {
	return a.blockSize
}

// Cache returns the cache for a worker, creating it on first use. Lookups of
// known workers only take the read lock.
func (a *Allocator) Cache(worker int) *ThreadCache {
	a.cacheMu.RLock()
	c, ok := a.caches[worker]
	a.cacheMu.RUnlock()
	if ok {
		return c
	}

	a.cacheMu.Lock()
	defer a.cacheMu.Unlock()
	if c, ok = a.caches[worker]; !ok {
		c = &ThreadCache{owner: a, worker: worker}
		a.caches[worker] = c
	}
	return c
}

// Allocate returns size zeroed bytes aligned to align for the given worker.
func (a *Allocator) Allocate(worker, size, align int) unsafe.Pointer {
	if size > a.blockSize {
		return a.allocateLarge(size, align)
	}
	return a.Cache(worker).Allocate(size, align)
}

// Deallocate releases an allocation made by Allocate. Only over-sized
// allocations are released individually; pooled memory is reclaimed by Reset.
func (a *Allocator) Deallocate(ptr unsafe.Pointer, size int) {
	if ptr == nil || size <= a.blockSize {
		return
	}
	a.largeMu.Lock()
	delete(a.large, ptr)
	a.largeMu.Unlock()
}

// Reset returns every block held by the worker's cache to the free list.
func (a *Allocator) Reset(worker int) {
	a.Cache(worker).Reset()
}

// Stats reports block counts. CreatedBlocks always equals FreeBlocks plus
// CachedBlocks.
func (a *Allocator) Stats() Stats {
	a.freeMu.Lock()
	s := Stats{
		BlockSize:     a.blockSize,
		CreatedBlocks: a.created,
		FreeBlocks:    len(a.free),
		CachedBlocks:  a.cached,
	}
	a.freeMu.Unlock()

	a.largeMu.Lock()
	s.LargeLive = len(a.large)
	a.largeMu.Unlock()
	return s
}

func (a *Allocator) allocateLarge(size, align int) unsafe.Pointer {
	ptr, mem := allocateHeap(size, align)
	a.largeMu.Lock()
	a.large[ptr] = mem
	a.largeMu.Unlock()
	return ptr
}

// allocateHeap returns aligned zeroed memory owned by the returned slice
func allocateHeap(size, align int) (unsafe.Pointer, []uint64) {
	checkAlign(align)
	extra := 0
	if align > wordSize {
		extra = align - wordSize
	}
	mem := make([]uint64, (size+extra+wordSize-1)/wordSize)
	base := uintptr(unsafe.Pointer(unsafe.SliceData(mem)))
	pad := int(alignUp(base, uintptr(align)) - base)
	return unsafe.Add(unsafe.Pointer(unsafe.SliceData(mem)), pad), mem
}

// getBlock pops a recycled block or creates a new one.
func (a *Allocator) getBlock() *block {
	a.freeMu.Lock()
	defer a.freeMu.Unlock()

	var b *block
	if n := len(a.free); n > 0 {
		b = a.free[n-1]
		a.free[n-1] = nil
		a.free = a.free[:n-1]
	} else {
		b = &block{mem: make([]uint64, a.blockSize/wordSize)}
		a.created++
	}
	a.cached++
	return b
}

func (a *Allocator) putBlocks(blocks []*block) {
	a.freeMu.Lock()
	a.free = append(a.free, blocks...)
	a.cached -= len(blocks)
	a.freeMu.Unlock()
}

// Worker returns the worker ID this cache belongs to.
func (c *ThreadCache) Worker() int {
	return c.worker
}

// Allocate bump-allocates size zeroed bytes aligned to align. Requests larger
// than a block bypass the pool.
func (c *ThreadCache) Allocate(size, align int) unsafe.Pointer {
	checkAlign(align)
	a := c.owner
	if size > a.blockSize {
		return a.allocateLarge(size, align)
	}
	if size == 0 {
		size = 1
	}

	if n := len(c.blocks); n > 0 {
		if ptr, ok := c.bump(c.blocks[n-1], size, align); ok {
			return ptr
		}
	}

	b := a.getBlock()
	c.blocks = append(c.blocks, b)
	c.offset = 0
	if ptr, ok := c.bump(b, size, align); ok {
		return ptr
	}
	// alignment padding pushed the request past the end of a fresh block;
	// Deallocate never sees this size, so the memory stays with the GC
	ptr, _ := allocateHeap(size, align)
	return ptr
}

func (c *ThreadCache) bump(b *block, size, align int) (unsafe.Pointer, bool) {
	base := b.base()
	start := int(alignUp(base+uintptr(c.offset), uintptr(align)) - base)
	if start+size > c.owner.blockSize {
		return nil, false
	}
	c.offset = start + size
	ptr := unsafe.Add(unsafe.Pointer(unsafe.SliceData(b.mem)), start)
	clear(unsafe.Slice((*byte)(ptr), size))
	return ptr, true
}

// Reset moves all of the cache's blocks to the global free list. Nothing
// allocated from the cache may be used afterwards.
func (c *ThreadCache) Reset() {
	if len(c.blocks) > 0 {
		c.owner.putBlocks(c.blocks)
		clear(c.blocks)
		c.blocks = c.blocks[:0]
	}
	c.offset = 0
}

// Blocks returns the number of blocks currently held by the cache.
func (c *ThreadCache) Blocks() int {
	return len(c.blocks)
}

// Alloc returns a pointer to a zeroed T. Pointer-free types are carved out of
// the cache's current block; types holding Go pointers, types larger than a
// block, and nil caches use the heap.
func Alloc[T any](c *ThreadCache) *T {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if c == nil || size > c.owner.blockSize || hasPointers(reflect.TypeOf((*T)(nil)).Elem()) {
		return new(T)
	}
	return (*T)(c.Allocate(size, int(unsafe.Alignof(zero))))
}

// Make is Alloc followed by an assignment of v.
func Make[T any](c *ThreadCache, v T) *T {
	ptr := Alloc[T](c)
	*ptr = v
	return ptr
}

var pointerTypes sync.Map // reflect.Type -> bool

func hasPointers(typ reflect.Type) bool {
	if v, ok := pointerTypes.Load(typ); ok {
		return v.(bool)
	}
	has := containsPointers(typ)
	pointerTypes.Store(typ, has)
	return has
}

func containsPointers(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return typ.Len() > 0 && containsPointers(typ.Elem())
	case reflect.Struct:
		for i := 0; i < typ.NumField(); i++ {
			if containsPointers(typ.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

func checkAlign(align int) {
	if align <= 0 || align&(align-1) != 0 {
		panic(fmt.Sprintf("arena: alignment %d is not a power of two", align))
	}
}

// alignUp rounds v up to a multiple of to, which has to be a power of two.
func alignUp[T constraints.Integer](v, to T) T {
	return (v + to - 1) &^ (to - 1)
}
