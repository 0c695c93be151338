package spatial

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Partition divides an origin-centered box into a fixed grid of uniform cells
// and tracks which cell each entity occupies. The grid is built once and never
// resized; positions outside the box map to the nearest border cell.
type Partition struct {
	cells []*Cell

	width  float64
	height float64
	depth  float64

	cellsX int
	cellsY int
	cellsZ int

	halfWidth  float64
	halfHeight float64
	halfDepth  float64
}

// NewPartition builds a grid of cellsX*cellsY*cellsZ cells covering a box of
// the given dimensions centered on the origin.
func NewPartition(width, height, depth float64, cellsX, cellsY, cellsZ int) *Partition {
	p := &Partition{
		width:      width,
		height:     height,
		depth:      depth,
		cellsX:     cellsX,
		cellsY:     cellsY,
		cellsZ:     cellsZ,
		halfWidth:  width / 2,
		halfHeight: height / 2,
		halfDepth:  depth / 2,
	}

	sizeX := width / float64(cellsX)
	sizeY := height / float64(cellsY)
	sizeZ := depth / float64(cellsZ)

	// Creation order matches Index: x outer, y middle, z inner.
	p.cells = make([]*Cell, 0, cellsX*cellsY*cellsZ)
	for x := 0; x < cellsX; x++ {
		for y := 0; y < cellsY; y++ {
			for z := 0; z < cellsZ; z++ {
				min := mgl64.Vec3{
					float64(x)*sizeX - p.halfWidth,
					float64(y)*sizeY - p.halfHeight,
					float64(z)*sizeZ - p.halfDepth,
				}
				max := mgl64.Vec3{min[0] + sizeX, min[1] + sizeY, min[2] + sizeZ}
				p.cells = append(p.cells, newCell(AABB{Min: min, Max: max}))
			}
		}
	}

	return p
}

// Index returns the flat cell index for a world position. Positions outside
// the box are clamped in, so the result is always a valid index.
func (p *Partition) Index(pos mgl64.Vec3) int {
	x := int(math.Floor(float64(p.cellsX) * (mgl64.Clamp(pos[0], -p.halfWidth, p.halfWidth) + p.halfWidth) / p.width))
	y := int(math.Floor(float64(p.cellsY) * (mgl64.Clamp(pos[1], -p.halfHeight, p.halfHeight) + p.halfHeight) / p.height))
	z := int(math.Floor(float64(p.cellsZ) * (mgl64.Clamp(pos[2], -p.halfDepth, p.halfDepth) + p.halfDepth) / p.depth))

	// A position on the far face lands exactly on the cell count; fold it back.
	if x == p.cellsX {
		x = p.cellsX - 1
	}
	if y == p.cellsY {
		y = p.cellsY - 1
	}
	if z == p.cellsZ {
		z = p.cellsZ - 1
	}

	return x*p.cellsY*p.cellsZ + y*p.cellsZ + z
}

// UpdateEntity reindexes an entity after it moved. current is the index
// returned by the previous call, or -1 on first insertion. When the cell
// changes the entity joins the new cell before leaving the old one, so it is
// never absent from the grid mid-move. Returns the index the caller must keep
// for the next call.
func (p *Partition) UpdateEntity(e Entity, current int) (int, error) {
	next := p.Index(e.Position())
	if next == current {
		return current, nil
	}

	p.cells[next].Add(e)
	if current != -1 {
		if err := p.cells[current].Remove(e); err != nil {
			return next, fmt.Errorf("spatial: reindex entity: %w", err)
		}
	}

	return next, nil
}

// Query appends to dst every entry of each non-empty cell intersecting the
// cube of half-extent radius around pos, and returns the updated slice. The
// result is a superset of the true sphere neighborhood; the exact distance
// check is the caller's. Reuse dst across calls to avoid allocations.
func (p *Partition) Query(pos mgl64.Vec3, radius float64, dst []Entity) []Entity {
	dst = dst[:0]

	r := mgl64.Vec3{radius, radius, radius}
	box := AABB{Min: pos.Sub(r), Max: pos.Add(r)}

	for _, c := range p.cells {
		if c.Empty() || !c.Box.Intersects(box) {
			continue
		}
		dst = append(dst, c.entries...)
	}

	return dst
}

// MakeEmpty drops every entry from every cell. The grid itself is unchanged.
func (p *Partition) MakeEmpty() {
	for _, c := range p.cells {
		c.MakeEmpty()
	}
}

// Cells returns the underlying cells in index order.
func (p *Partition) Cells() []*Cell {
	return p.cells
}

// Bounds returns the box the partition covers.
func (p *Partition) Bounds() AABB {
	return AABB{
		Min: mgl64.Vec3{-p.halfWidth, -p.halfHeight, -p.halfDepth},
		Max: mgl64.Vec3{p.halfWidth, p.halfHeight, p.halfDepth},
	}
}
