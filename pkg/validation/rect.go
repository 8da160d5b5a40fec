package validation

import "fmt"

// Rect is a rectangle on the canvas grid, origin top-left.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Overlaps reports whether two rectangles share any area. Half-open
// intervals: touching edges do not count as overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.Width &&
		r.X+r.Width > o.X &&
		r.Y < o.Y+o.Height &&
		r.Y+r.Height > o.Y
}

// Area returns the number of grid pixels covered by the rectangle.
func (r Rect) Area() int {
	return r.Width * r.Height
}

// ValidateRect checks that the rectangle is grid-aligned, at least minSize in
// each dimension and fully inside the canvasSize x canvasSize canvas.
func ValidateRect(r Rect, canvasSize, gridStep, minSize int) error {
	if r.Width < minSize || r.Height < minSize {
		return fmt.Errorf("region must be at least %dx%d pixels, got %dx%d", minSize, minSize, r.Width, r.Height)
	}
	if r.X%gridStep != 0 || r.Y%gridStep != 0 || r.Width%gridStep != 0 || r.Height%gridStep != 0 {
		return fmt.Errorf("region must be aligned to the %d-pixel grid", gridStep)
	}
	if r.X < 0 || r.Y < 0 {
		return fmt.Errorf("region origin (%d, %d) is outside the canvas", r.X, r.Y)
	}
	if r.X+r.Width > canvasSize || r.Y+r.Height > canvasSize {
		return fmt.Errorf("region extends beyond the %dx%d canvas", canvasSize, canvasSize)
	}
	return nil
}
