// Package vec provides small immutable 2D/3D vector value types used
// throughout the simulation. All operations are pure and allocation-free.
package vec

import "math"

// Vec2 is a 2D vector.
type Vec2 struct {
	X, Y float64
}

// V2 returns a Vec2 from components.
func V2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale returns v * s.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Dot returns the dot product of v and o.
func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

// MagnitudeSq returns the squared magnitude (avoids sqrt in hot paths).
func (v Vec2) MagnitudeSq() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Magnitude returns the Euclidean length of v. Always >= 0.
func (v Vec2) Magnitude() float64 {
	return math.Sqrt(v.MagnitudeSq())
}

// Normalized returns v scaled to unit length. A zero-length vector
// normalizes to the zero vector, never NaN or Inf.
func (v Vec2) Normalized() Vec2 {
	mag := v.Magnitude()
	if mag > 0 {
		return Vec2{X: v.X / mag, Y: v.Y / mag}
	}
	return Vec2{}
}

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float64
}

// V3 returns a Vec3 from components.
func V3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Cross returns the cross product of v and o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// MagnitudeSq returns the squared magnitude (avoids sqrt in hot paths).
func (v Vec3) MagnitudeSq() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Magnitude returns the Euclidean length of v. Always >= 0.
func (v Vec3) Magnitude() float64 {
	return math.Sqrt(v.MagnitudeSq())
}

// Normalized returns v scaled to unit length. A zero-length vector
// normalizes to the zero vector, never NaN or Inf.
func (v Vec3) Normalized() Vec3 {
	mag := v.Magnitude()
	if mag > 0 {
		return Vec3{X: v.X / mag, Y: v.Y / mag, Z: v.Z / mag}
	}
	return Vec3{}
}

// Truncate returns v rescaled to exactly maxLen when its magnitude
// exceeds maxLen, and v unchanged otherwise.
func (v Vec3) Truncate(maxLen float64) Vec3 {
	mag := v.Magnitude()
	if mag > maxLen {
		return v.Normalized().Scale(maxLen)
	}
	return v
}

// IsZero reports whether all components are exactly zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}
