package boxfit

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// ErrEmptyCloud reports an operation that received a point cloud with no
// points (observations, proposal input, or a Chamfer operand).
var ErrEmptyCloud = errors.New("boxfit: empty point cloud")

// Point is a single 3D coordinate in the shared world frame.
type Point struct {
	X, Y, Z float64
}

// PointCloud is an ordered sequence of 3D points. Order is irrelevant
// for scoring; it only fixes tie-breaks when hypotheses are ranked.
type PointCloud []Point

// coords splits the cloud into per-axis coordinate slices.
func (pc PointCloud) coords() (xs, ys, zs []float64) {
	xs = make([]float64, len(pc))
	ys = make([]float64, len(pc))
	zs = make([]float64, len(pc))
	for i, p := range pc {
		xs[i] = p.X
		ys[i] = p.Y
		zs[i] = p.Z
	}
	return xs, ys, zs
}

// Centroid returns the arithmetic mean of the cloud.
func (pc PointCloud) Centroid() (Point, error) {
	if len(pc) == 0 {
		return Point{}, fmt.Errorf("centroid: %w", ErrEmptyCloud)
	}
	xs, ys, zs := pc.coords()
	return Point{
		X: stat.Mean(xs, nil),
		Y: stat.Mean(ys, nil),
		Z: stat.Mean(zs, nil),
	}, nil
}

// Extent returns the axis-aligned minimum and maximum corners of the
// cloud's bounding region.
func (pc PointCloud) Extent() (min, max Point, err error) {
	if len(pc) == 0 {
		return Point{}, Point{}, fmt.Errorf("extent: %w", ErrEmptyCloud)
	}
	min, max = pc[0], pc[0]
	for _, p := range pc[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.Z < min.Z {
			min.Z = p.Z
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
		if p.Z > max.Z {
			max.Z = p.Z
		}
	}
	return min, max, nil
}
