package constraint

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Normals are the wall normals, one per axis
var Normals = [3]mgl64.Vec3{
	{1, 0, 0},
	{0, 1, 0},
	{0, 0, 1},
}

// Face identifies one of the six walls
type Face uint8

const (
	FaceMinX Face = iota
	FaceMaxX
	FaceMinY
	FaceMaxY
	FaceMinZ
	FaceMaxZ
)

func (f Face) String() string {
	switch f {
	case FaceMinX:
		return "-x"
	case FaceMaxX:
		return "+x"
	case FaceMinY:
		return "-y"
	case FaceMaxY:
		return "+y"
	case FaceMinZ:
		return "-z"
	case FaceMaxZ:
		return "+z"
	default:
		return "unknown"
	}
}

// Contact is the aggregated penetration of a box against the slab of one axis
type Contact struct {
	Axis   int
	Normal mgl64.Vec3
	// Point is the penetration weighted average of the penetrating corners
	Point mgl64.Vec3
	// Depth is the signed error of the deepest corner, negative below the slab
	Depth float64
	// Corners counts the penetrating corners
	Corners int
}

// Face returns the wall touched by the contact
func (c Contact) Face() Face {
	if c.Depth < 0 {
		return Face(2 * c.Axis)
	}

	return Face(2*c.Axis + 1)
}

// SlabContact measures how far corners exit the slab [min, max] along the given axis.
// It returns false when no corner is outside the slab.
func SlabContact(corners []mgl64.Vec3, min, max mgl64.Vec3, axis int) (Contact, bool) {
	normal := Normals[axis]

	var errorSum, errorMin float64
	var weightedSum mgl64.Vec3
	count := 0

	for _, corner := range corners {
		e := math.Min(corner.Sub(min).Dot(normal), 0) + math.Max(corner.Sub(max).Dot(normal), 0)
		if e == 0 {
			continue
		}

		errorSum += e
		weightedSum = weightedSum.Add(corner.Mul(e))
		if math.Abs(e) > math.Abs(errorMin) {
			errorMin = e
		}
		count++
	}

	if errorSum == 0 {
		return Contact{}, false
	}

	return Contact{
		Axis:    axis,
		Normal:  normal,
		Point:   weightedSum.Mul(1.0 / errorSum),
		Depth:   errorMin,
		Corners: count,
	}, true
}
