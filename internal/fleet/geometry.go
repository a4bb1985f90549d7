package fleet

import "math"

// Point is an immutable 2D position.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Step moves from toward to by at most speed, never overshooting.
func Step(from, to Point, speed float64) Point {
	d := Distance(from, to)
	if d == 0 || speed <= 0 {
		return from
	}
	if speed >= d {
		return to
	}
	return Point{
		X: from.X + (to.X-from.X)/d*speed,
		Y: from.Y + (to.Y-from.Y)/d*speed,
	}
}
