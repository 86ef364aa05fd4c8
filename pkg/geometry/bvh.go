package geometry

import (
	"sort"
	"time"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/log"
	"github.com/pkg/errors"
)

var logger = log.New("bvh")

// SplitStrategy selects how interior nodes are partitioned
type SplitStrategy uint8

const (
	// SplitSAH buckets centroids and picks the split with the lowest
	// surface area heuristic cost, falling back to SplitMedian when every
	// centroid lands on one side.
	SplitSAH SplitStrategy = iota

	// SplitMedian sorts centroids along the split axis and halves the set.
	SplitMedian
)

func (s SplitStrategy) String() string {
	if s == SplitMedian {
		return "median"
	}
	return "sah"
}

const (
	defaultLeafSize = 4
	defaultBuckets  = 12

	// Nodes deeper than this become leaves regardless of size. This bounds
	// the traversal stack.
	maxBuildDepth = 64

	// Relative cost of a traversal step against a primitive test
	traversalCost = 0.125
)

// BuildOptions controls BVH construction
type BuildOptions struct {
	LeafSize int           // Maximum primitives per leaf (default 4)
	Strategy SplitStrategy // Split selection strategy (default SAH)
	Buckets  int           // SAH bucket count (default 12)
}

// DefaultBuildOptions returns the options used when none are supplied
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		LeafSize: defaultLeafSize,
		Strategy: SplitSAH,
		Buckets:  defaultBuckets,
	}
}

func (o BuildOptions) withDefaults() BuildOptions {
	if o.LeafSize <= 0 {
		o.LeafSize = defaultLeafSize
	}
	if o.Buckets < 2 {
		o.Buckets = defaultBuckets
	}
	return o
}

// BVHNode is one entry in the flat node arena. A node is a leaf iff Count > 0,
// in which case it covers indices[Start:Start+Count]. Interior nodes refer to
// their children by arena position.
type BVHNode struct {
	Bounds      core.AABB
	Left, Right int32
	Start       int32
	Count       int32
}

// IsLeaf returns true if the node stores primitives directly
func (n BVHNode) IsLeaf() bool {
	return n.Count > 0
}

// BVHStats summarizes the shape of a built hierarchy
type BVHStats struct {
	Nodes        int
	Leaves       int
	MaxDepth     int
	MaxLeafSize  int
	Primitives   int     // Primitives stored in the tree
	Excluded     int     // Degenerate primitives left out of the tree
	AvgLeafDepth float64 // Mean depth of leaves, root at depth 0
	BuildTime    time.Duration
}

// BVH is an immutable bounding volume hierarchy over a primitive list.
// It is safe for concurrent queries.
type BVH struct {
	prims   []Primitive
	indices []int // Permutation of the non-degenerate primitive indices
	nodes   []BVHNode
	stats   BVHStats
}

// buildItem caches the bounds of one primitive during construction
type buildItem struct {
	index    int
	bounds   core.AABB
	centroid core.Vec3
}

type bvhBuilder struct {
	opts  BuildOptions
	items []buildItem
	nodes []BVHNode

	scratch      []buildItem
	leafDepthSum int
	stats        BVHStats
}

// BuildBVH constructs a BVH over prims. Degenerate primitives are excluded.
// The primitive slice is copied, and hit records report indices into it.
// Construction is deterministic: the same input always yields the same tree.
func BuildBVH(prims []Primitive, opts BuildOptions) *BVH {
	start := time.Now()
	opts = opts.withDefaults()

	bvh := &BVH{prims: append([]Primitive(nil), prims...)}

	b := &bvhBuilder{opts: opts}
	b.items = make([]buildItem, 0, len(prims))
	for i := range bvh.prims {
		p := &bvh.prims[i]
		if p.Degenerate() {
			b.stats.Excluded++
			continue
		}
		bounds := p.BoundingBox()
		b.items = append(b.items, buildItem{index: i, bounds: bounds, centroid: bounds.Center()})
	}
	b.scratch = make([]buildItem, len(b.items))

	if len(b.items) > 0 {
		b.nodes = make([]BVHNode, 0, 2*len(b.items)/opts.LeafSize+1)
		b.build(0, len(b.items), 0)
	}

	bvh.nodes = b.nodes
	bvh.indices = make([]int, len(b.items))
	for i, item := range b.items {
		bvh.indices[i] = item.index
	}

	b.stats.Nodes = len(b.nodes)
	b.stats.Primitives = len(b.items)
	if b.stats.Leaves > 0 {
		b.stats.AvgLeafDepth = float64(b.leafDepthSum) / float64(b.stats.Leaves)
	}
	b.stats.BuildTime = time.Since(start)
	bvh.stats = b.stats

	logger.Debugf(
		"BVH build time: %d ms, strategy: %s, primitives: %d, excluded: %d, nodes: %d, leaves: %d, maxDepth: %d",
		b.stats.BuildTime.Milliseconds(), opts.Strategy, b.stats.Primitives, b.stats.Excluded,
		b.stats.Nodes, b.stats.Leaves, b.stats.MaxDepth,
	)

	return bvh
}

// build partitions items[start:end] and returns the arena index of the new node
func (b *bvhBuilder) build(start, end, depth int) int32 {
	if depth > b.stats.MaxDepth {
		b.stats.MaxDepth = depth
	}

	bounds := core.EmptyAABB()
	centroids := core.EmptyAABB()
	for _, item := range b.items[start:end] {
		bounds = bounds.Union(item.bounds)
		centroids = centroids.UnionPoint(item.centroid)
	}

	nodeIndex := int32(len(b.nodes))
	b.nodes = append(b.nodes, BVHNode{Bounds: bounds})

	count := end - start
	axis := centroids.LongestAxis()
	extent := centroids.Size().Axis(axis)

	// Create a leaf if the set is small enough or cannot be separated
	if count <= b.opts.LeafSize || !(extent > 0) || depth >= maxBuildDepth {
		b.makeLeaf(nodeIndex, start, end, depth)
		return nodeIndex
	}

	mid := -1
	if b.opts.Strategy == SplitSAH {
		mid = b.splitSAH(start, end, axis, centroids, bounds)
	}
	if mid <= start || mid >= end {
		mid = b.splitMedian(start, end, axis)
	}

	left := b.build(start, mid, depth+1)
	right := b.build(mid, end, depth+1)
	b.nodes[nodeIndex].Left = left
	b.nodes[nodeIndex].Right = right

	return nodeIndex
}

func (b *bvhBuilder) makeLeaf(nodeIndex int32, start, end, depth int) {
	node := &b.nodes[nodeIndex]
	node.Start = int32(start)
	node.Count = int32(end - start)

	b.stats.Leaves++
	b.leafDepthSum += depth
	if end-start > b.stats.MaxLeafSize {
		b.stats.MaxLeafSize = end - start
	}
}

func (b *bvhBuilder) bucketFor(c core.Vec3, axis int, centroids core.AABB) int {
	lo := centroids.Min.Axis(axis)
	extent := centroids.Max.Axis(axis) - lo
	bucket := int(float64(b.opts.Buckets) * (c.Axis(axis) - lo) / extent)
	if bucket >= b.opts.Buckets {
		bucket = b.opts.Buckets - 1
	}
	if bucket < 0 {
		bucket = 0
	}
	return bucket
}

// splitSAH scores every bucket boundary with the surface area heuristic:
//
// cost = traversal + (leftCount * leftArea + rightCount * rightArea) / nodeArea
//
// and stably partitions items around the cheapest one. Returns the index of
// the first right-hand item, or -1 if no boundary separates the set.
func (b *bvhBuilder) splitSAH(start, end, axis int, centroids, bounds core.AABB) int {
	nb := b.opts.Buckets
	counts := make([]int, nb)
	boxes := make([]core.AABB, nb)
	for i := range boxes {
		boxes[i] = core.EmptyAABB()
	}
	for _, item := range b.items[start:end] {
		k := b.bucketFor(item.centroid, axis, centroids)
		counts[k]++
		boxes[k] = boxes[k].Union(item.bounds)
	}

	// Sweep from the right to get suffix areas, then from the left
	rightArea := make([]float64, nb)
	rightCount := make([]int, nb)
	acc := core.EmptyAABB()
	n := 0
	for i := nb - 1; i > 0; i-- {
		acc = acc.Union(boxes[i])
		n += counts[i]
		rightArea[i] = acc.SurfaceArea()
		rightCount[i] = n
	}

	nodeArea := bounds.SurfaceArea()
	bestCost := -1.0
	bestSplit := -1
	acc = core.EmptyAABB()
	n = 0
	for i := 0; i < nb-1; i++ {
		acc = acc.Union(boxes[i])
		n += counts[i]
		if n == 0 || rightCount[i+1] == 0 {
			continue
		}
		cost := traversalCost
		if nodeArea > 0 {
			cost += (float64(n)*acc.SurfaceArea() + float64(rightCount[i+1])*rightArea[i+1]) / nodeArea
		}
		if bestSplit < 0 || cost < bestCost {
			bestCost = cost
			bestSplit = i
		}
	}
	if bestSplit < 0 {
		return -1
	}

	return b.partition(start, end, func(item buildItem) bool {
		return b.bucketFor(item.centroid, axis, centroids) <= bestSplit
	})
}

// partition stably moves items matching isLeft to the front of items[start:end]
func (b *bvhBuilder) partition(start, end int, isLeft func(buildItem) bool) int {
	scratch := b.scratch[start:end]
	k := 0
	for _, item := range b.items[start:end] {
		if isLeft(item) {
			scratch[k] = item
			k++
		}
	}
	mid := start + k
	for _, item := range b.items[start:end] {
		if !isLeft(item) {
			scratch[k] = item
			k++
		}
	}
	copy(b.items[start:end], scratch)
	return mid
}

// splitMedian orders items by centroid along axis (ties by primitive index)
// and splits at the middle
func (b *bvhBuilder) splitMedian(start, end, axis int) int {
	items := b.items[start:end]
	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := items[i].centroid.Axis(axis), items[j].centroid.Axis(axis)
		if ci != cj {
			return ci < cj
		}
		return items[i].index < items[j].index
	})
	return start + (end-start)/2
}

// NearestHit finds the closest intersection along the ray within
// [ray.TMin, ray.TMax]. Rays with a zero-length or non-finite direction
// never hit.
func (b *BVH) NearestHit(ray core.Ray) (HitRecord, bool) {
	var rec HitRecord
	if len(b.nodes) == 0 || !ray.Valid() || !(ray.TMin <= ray.TMax) {
		return rec, false
	}

	invDir := ray.InverseDirection()
	closest := ray.TMax
	hit := false

	type entry struct {
		node  int32
		tNear float64
	}
	var stack [2*maxBuildDepth + 2]entry
	sp := 0

	tRoot, ok := b.nodes[0].Bounds.IntersectRay(ray, invDir, ray.TMin, closest)
	if !ok {
		return rec, false
	}
	stack[sp] = entry{0, tRoot}
	sp++

	var tmp HitRecord
	for sp > 0 {
		sp--
		e := stack[sp]
		// A closer hit may have been found since this node was pushed
		if e.tNear > closest {
			continue
		}

		node := &b.nodes[e.node]
		if node.IsLeaf() {
			for i := node.Start; i < node.Start+node.Count; i++ {
				idx := b.indices[i]
				if b.prims[idx].Intersect(ray, ray.TMin, closest, &tmp) {
					closest = tmp.T
					tmp.Primitive = idx
					rec = tmp
					hit = true
				}
			}
			continue
		}

		tl, okL := b.nodes[node.Left].Bounds.IntersectRay(ray, invDir, ray.TMin, closest)
		tr, okR := b.nodes[node.Right].Bounds.IntersectRay(ray, invDir, ray.TMin, closest)

		// Push the far child first so the near child is visited next
		switch {
		case okL && okR:
			if tl <= tr {
				stack[sp] = entry{node.Right, tr}
				stack[sp+1] = entry{node.Left, tl}
			} else {
				stack[sp] = entry{node.Left, tl}
				stack[sp+1] = entry{node.Right, tr}
			}
			sp += 2
		case okL:
			stack[sp] = entry{node.Left, tl}
			sp++
		case okR:
			stack[sp] = entry{node.Right, tr}
			sp++
		}
	}

	return rec, hit
}

// LinearHit finds the closest intersection by testing every primitive in the
// tree. It returns the same answer as NearestHit and exists as a reference.
func (b *BVH) LinearHit(ray core.Ray) (HitRecord, bool) {
	var rec, tmp HitRecord
	if !ray.Valid() || !(ray.TMin <= ray.TMax) {
		return rec, false
	}

	closest := ray.TMax
	hit := false
	for _, idx := range b.indices {
		if b.prims[idx].Intersect(ray, ray.TMin, closest, &tmp) {
			closest = tmp.T
			tmp.Primitive = idx
			rec = tmp
			hit = true
		}
	}
	return rec, hit
}

// Validate checks the structural invariants of the tree: every node's
// bounds contain its children (or its primitives) and every stored
// primitive is referenced by exactly one leaf.
func (b *BVH) Validate() error {
	if len(b.nodes) == 0 {
		if len(b.indices) != 0 {
			return errors.Wrapf(ErrCorruptBVH, "%d primitives but no nodes", len(b.indices))
		}
		return nil
	}

	seen := make([]bool, len(b.indices))
	for i, node := range b.nodes {
		if node.IsLeaf() {
			if node.Start < 0 || int(node.Start+node.Count) > len(b.indices) {
				return errors.Wrapf(ErrCorruptBVH, "leaf %d range [%d, %d) out of bounds", i, node.Start, node.Start+node.Count)
			}
			for k := node.Start; k < node.Start+node.Count; k++ {
				if seen[k] {
					return errors.Wrapf(ErrCorruptBVH, "primitive slot %d referenced twice", k)
				}
				seen[k] = true
				if box := b.prims[b.indices[k]].BoundingBox(); !node.Bounds.Contains(box) {
					return errors.Wrapf(ErrCorruptBVH, "leaf %d does not contain primitive %d", i, b.indices[k])
				}
			}
			continue
		}

		for _, child := range []int32{node.Left, node.Right} {
			if child <= int32(i) || int(child) >= len(b.nodes) {
				return errors.Wrapf(ErrCorruptBVH, "node %d has invalid child %d", i, child)
			}
			if !node.Bounds.Contains(b.nodes[child].Bounds) {
				return errors.Wrapf(ErrCorruptBVH, "node %d does not contain child %d", i, child)
			}
		}
	}

	for k, ok := range seen {
		if !ok {
			return errors.Wrapf(ErrCorruptBVH, "primitive slot %d not referenced by any leaf", k)
		}
	}
	return nil
}

// Bounds returns the bounding box of the whole tree
func (b *BVH) Bounds() core.AABB {
	if len(b.nodes) == 0 {
		return core.EmptyAABB()
	}
	return b.nodes[0].Bounds
}

// Len returns the number of primitives stored in the tree
func (b *BVH) Len() int {
	return len(b.indices)
}

// Stats returns construction statistics
func (b *BVH) Stats() BVHStats {
	return b.stats
}

// Primitive returns the primitive with the given index into the build input
func (b *BVH) Primitive(i int) Primitive {
	return b.prims[i]
}

// Primitives returns a copy of the build input, degenerate primitives included
func (b *BVH) Primitives() []Primitive {
	return append([]Primitive(nil), b.prims...)
}
