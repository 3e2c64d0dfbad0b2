package geometry

import (
	"math"
	"time"

	"github.com/df07/go-bdpt-renderer/pkg/core"
	"github.com/df07/go-bdpt-renderer/pkg/log"
	"github.com/df07/go-bdpt-renderer/pkg/material"
)

const (
	// DefaultMaxLeafSize is the largest primitive count stored in a leaf
	DefaultMaxLeafSize = 4

	// Number of equal-width centroid buckets evaluated per split
	sahBuckets = 12

	// Cost of one node traversal relative to one primitive test
	sahTraversalCost = 0.125

	// Capacity of the traversal stack. Builds never exceed this depth.
	maxTraversalDepth = 128
)

var logger = log.New("bvh")

// LinearNode is one entry of the flattened, depth-first BVH. The left child
// of an interior node is the next array entry; offset holds the index of the
// right child for interior nodes and the first primitive for leaves. A
// non-zero count marks a leaf.
type LinearNode struct {
	Bounds core.AABB
	offset int
	count  int
	axis   int
}

// IsLeaf reports whether the node stores primitives
func (n *LinearNode) IsLeaf() bool {
	return n.count > 0
}

// PrimitivesOffset is the index of the leaf's first primitive
func (n *LinearNode) PrimitivesOffset() int {
	return n.offset
}

// PrimitiveCount is the number of primitives in a leaf, 0 for interior nodes
func (n *LinearNode) PrimitiveCount() int {
	return n.count
}

// SecondChildOffset is the index of an interior node's right child
func (n *LinearNode) SecondChildOffset() int {
	return n.offset
}

// Axis is the split axis of an interior node
func (n *LinearNode) Axis() int {
	return n.axis
}

// BVH is a bounding volume hierarchy built with the surface area heuristic.
// It is immutable after construction and safe for concurrent queries.
type BVH struct {
	// OrderedTraversal visits the child nearer along the split axis first
	// instead of always descending into the left child
	OrderedTraversal bool

	primitives  []Primitive
	nodes       []LinearNode
	maxLeafSize int
	stats       BVHStats
}

// BVHStats describes the shape of a built hierarchy
type BVHStats struct {
	Primitives int
	Nodes      int
	Leaves     int
	MaxDepth   int
	BuildTime  time.Duration
}

type primitiveInfo struct {
	index    int
	bounds   core.AABB
	centroid core.Vec3
}

// buildNode is the transient tree produced before flattening
type buildNode struct {
	bounds    core.AABB
	children  [2]*buildNode
	axis      int
	firstPrim int
	primCount int
}

type bucket struct {
	count  int
	bounds core.AABB
}

// NewBVH constructs a BVH over prims. The input slice is not modified.
func NewBVH(prims []Primitive, maxLeafSize int) *BVH {
	if maxLeafSize <= 0 {
		maxLeafSize = DefaultMaxLeafSize
	}
	bvh := &BVH{maxLeafSize: maxLeafSize}
	if len(prims) == 0 {
		return bvh
	}

	start := time.Now()
	infos := make([]primitiveInfo, len(prims))
	for i, p := range prims {
		b := p.BoundingBox()
		infos[i] = primitiveInfo{index: i, bounds: b, centroid: b.Center()}
	}

	ordered := make([]Primitive, 0, len(prims))
	scratch := make([]primitiveInfo, len(prims))
	totalNodes := 0
	root := bvh.build(prims, infos, scratch, &ordered, 0, &totalNodes)
	bvh.primitives = ordered

	bvh.nodes = make([]LinearNode, 0, totalNodes)
	bvh.flatten(root)

	bvh.stats.Primitives = len(prims)
	bvh.stats.Nodes = len(bvh.nodes)
	bvh.stats.BuildTime = time.Since(start)
	logger.Debugf(
		"BVH build time: %d ms, primitives: %d, nodes: %d, leaves: %d, maxDepth: %d",
		bvh.stats.BuildTime.Milliseconds(), bvh.stats.Primitives,
		bvh.stats.Nodes, bvh.stats.Leaves, bvh.stats.MaxDepth,
	)
	return bvh
}

// build recursively partitions infos, which is the primitive range being split
func (bvh *BVH) build(prims []Primitive, infos, scratch []primitiveInfo, ordered *[]Primitive, depth int, totalNodes *int) *buildNode {
	*totalNodes++
	if depth > bvh.stats.MaxDepth {
		bvh.stats.MaxDepth = depth
	}

	node := &buildNode{bounds: core.EmptyAABB()}
	centroidBounds := core.EmptyAABB()
	for i := range infos {
		node.bounds = node.bounds.Union(infos[i].bounds)
		centroidBounds = centroidBounds.UnionPoint(infos[i].centroid)
	}

	axis := centroidBounds.LongestAxis()
	degenerate := centroidBounds.Max.Axis(axis) == centroidBounds.Min.Axis(axis)
	if len(infos) <= bvh.maxLeafSize || degenerate || depth >= maxTraversalDepth-1 {
		node.firstPrim = len(*ordered)
		node.primCount = len(infos)
		for i := range infos {
			*ordered = append(*ordered, prims[infos[i].index])
		}
		bvh.stats.Leaves++
		return node
	}

	split := chooseSplit(infos, centroidBounds, node.bounds, axis)

	// stable partition of the range by bucket index <= split
	lo := centroidBounds.Min.Axis(axis)
	extent := centroidBounds.Max.Axis(axis) - lo
	mid := 0
	for i := range infos {
		if bucketIndex(infos[i].centroid.Axis(axis), lo, extent) <= split {
			scratch[mid] = infos[i]
			mid++
		}
	}
	right := mid
	for i := range infos {
		if bucketIndex(infos[i].centroid.Axis(axis), lo, extent) > split {
			scratch[right] = infos[i]
			right++
		}
	}
	copy(infos, scratch[:len(infos)])

	node.axis = axis
	node.children[0] = bvh.build(prims, infos[:mid], scratch[:mid], ordered, depth+1, totalNodes)
	node.children[1] = bvh.build(prims, infos[mid:], scratch[mid:], ordered, depth+1, totalNodes)
	return node
}

// chooseSplit returns the bucket boundary with the lowest SAH cost. Both
// sides are non-empty since the extreme centroids land in the first and
// last buckets.
func chooseSplit(infos []primitiveInfo, centroidBounds, bounds core.AABB, axis int) int {
	var buckets [sahBuckets]bucket
	for i := range buckets {
		buckets[i].bounds = core.EmptyAABB()
	}

	lo := centroidBounds.Min.Axis(axis)
	extent := centroidBounds.Max.Axis(axis) - lo
	for i := range infos {
		b := bucketIndex(infos[i].centroid.Axis(axis), lo, extent)
		buckets[b].count++
		buckets[b].bounds = buckets[b].bounds.Union(infos[i].bounds)
	}

	parentArea := bounds.SurfaceArea()
	best, bestCost := 0, math.Inf(1)
	for i := 0; i < sahBuckets-1; i++ {
		left, right := core.EmptyAABB(), core.EmptyAABB()
		leftCount, rightCount := 0, 0
		for j := 0; j <= i; j++ {
			left = left.Union(buckets[j].bounds)
			leftCount += buckets[j].count
		}
		for j := i + 1; j < sahBuckets; j++ {
			right = right.Union(buckets[j].bounds)
			rightCount += buckets[j].count
		}

		cost := sahTraversalCost
		if parentArea > 0 {
			cost += (float64(leftCount)*left.SurfaceArea() + float64(rightCount)*right.SurfaceArea()) / parentArea
		}
		if cost < bestCost {
			best, bestCost = i, cost
		}
	}
	return best
}

func bucketIndex(c, lo, extent float64) int {
	b := int(sahBuckets * (c - lo) / extent)
	if b >= sahBuckets {
		b = sahBuckets - 1
	}
	if b < 0 {
		b = 0
	}
	return b
}

// flatten writes node and its subtrees in depth-first pre-order and returns its index
func (bvh *BVH) flatten(node *buildNode) int {
	idx := len(bvh.nodes)
	bvh.nodes = append(bvh.nodes, LinearNode{Bounds: node.bounds})
	if node.primCount > 0 {
		bvh.nodes[idx].offset = node.firstPrim
		bvh.nodes[idx].count = node.primCount
		return idx
	}
	bvh.nodes[idx].axis = node.axis
	bvh.flatten(node.children[0])
	bvh.nodes[idx].offset = bvh.flatten(node.children[1])
	return idx
}

// Intersect returns the closest hit with distance below tMax
func (bvh *BVH) Intersect(ray core.Ray, tMax float64) (*material.SurfaceInteraction, bool) {
	if len(bvh.nodes) == 0 {
		return nil, false
	}

	invDir, dirIsNeg := rayTraversalSetup(ray)
	var closest *material.SurfaceInteraction
	var stack [maxTraversalDepth]int
	toVisit, current := 0, 0
	for {
		node := &bvh.nodes[current]
		if node.Bounds.HitSlab(ray.Origin, invDir, dirIsNeg, tMax) {
			if node.count > 0 {
				for i := node.offset; i < node.offset+node.count; i++ {
					if si, ok := bvh.primitives[i].Hit(ray, MinHitDistance, tMax); ok {
						closest = si
						tMax = si.T
					}
				}
			} else {
				first, second := current+1, node.offset
				if bvh.OrderedTraversal && dirIsNeg[node.axis] == 1 {
					first, second = second, first
				}
				stack[toVisit] = second
				toVisit++
				current = first
				continue
			}
		}
		if toVisit == 0 {
			break
		}
		toVisit--
		current = stack[toVisit]
	}
	return closest, closest != nil
}

// IntersectP reports whether anything is hit before tMax
func (bvh *BVH) IntersectP(ray core.Ray, tMax float64) bool {
	if len(bvh.nodes) == 0 {
		return false
	}

	invDir, dirIsNeg := rayTraversalSetup(ray)
	var stack [maxTraversalDepth]int
	toVisit, current := 0, 0
	for {
		node := &bvh.nodes[current]
		if node.Bounds.HitSlab(ray.Origin, invDir, dirIsNeg, tMax) {
			if node.count > 0 {
				for i := node.offset; i < node.offset+node.count; i++ {
					if _, ok := bvh.primitives[i].Hit(ray, MinHitDistance, tMax); ok {
						return true
					}
				}
			} else {
				stack[toVisit] = node.offset
				toVisit++
				current++
				continue
			}
		}
		if toVisit == 0 {
			return false
		}
		toVisit--
		current = stack[toVisit]
	}
}

func rayTraversalSetup(ray core.Ray) (core.Vec3, [3]int) {
	invDir := core.NewVec3(1/ray.Direction.X, 1/ray.Direction.Y, 1/ray.Direction.Z)
	var dirIsNeg [3]int
	if invDir.X < 0 {
		dirIsNeg[0] = 1
	}
	if invDir.Y < 0 {
		dirIsNeg[1] = 1
	}
	if invDir.Z < 0 {
		dirIsNeg[2] = 1
	}
	return invDir, dirIsNeg
}

// Bounds returns the bounds of the whole hierarchy; empty for an empty BVH
func (bvh *BVH) Bounds() core.AABB {
	if len(bvh.nodes) == 0 {
		return core.EmptyAABB()
	}
	return bvh.nodes[0].Bounds
}

// Nodes returns the flattened node array
func (bvh *BVH) Nodes() []LinearNode {
	return bvh.nodes
}

// Primitives returns the primitives in leaf order
func (bvh *BVH) Primitives() []Primitive {
	return bvh.primitives
}

// Stats returns build statistics
func (bvh *BVH) Stats() BVHStats {
	return bvh.stats
}
