/*
	Copyright 2025 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

// Package hittest provides rectangle intersection tests between a pointer
// gesture's rectangle and rendered element bounds.  All coordinates are in
// pointer-event space: X grows rightward and Y grows downward.
package hittest

import "math"

// Point is a position in pointer-event space.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle.  Top is less than or equal to Bottom.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// RectFromPoints returns the rectangle spanned by two corners, in any order.
func RectFromPoints(a, b Point) Rect {
	return Rect{
		Left:   math.Min(a.X, b.X),
		Top:    math.Min(a.Y, b.Y),
		Right:  math.Max(a.X, b.X),
		Bottom: math.Max(a.Y, b.Y),
	}
}

// Width returns the receiver's horizontal extent.
func (r Rect) Width() float64 {
	return r.Right - r.Left
}

// Height returns the receiver's vertical extent.
func (r Rect) Height() float64 {
	return r.Bottom - r.Top
}

// Empty returns true if the receiver has zero width or zero height.
func (r Rect) Empty() bool {
	return r.Width() <= 0 || r.Height() <= 0
}

// Contains returns true if p lies within the receiver, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Top && p.Y <= r.Bottom
}

// Translate returns the receiver shifted by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{
		Left:   r.Left + dx,
		Top:    r.Top + dy,
		Right:  r.Right + dx,
		Bottom: r.Bottom + dy,
	}
}

// Intersects returns true if rect and bounds overlap, edges included.  Empty
// bounds, such as a bar whose value rendered to nothing, never intersect.
func Intersects(rect, bounds Rect) bool {
	if bounds.Empty() {
		return false
	}
	return rect.Left <= bounds.Right &&
		rect.Right >= bounds.Left &&
		rect.Top <= bounds.Bottom &&
		rect.Bottom >= bounds.Top
}

// Hits returns the positions within bounds of every rectangle intersecting
// rect, in order.
func Hits(rect Rect, bounds []Rect) []int {
	var ret []int
	for idx, b := range bounds {
		if Intersects(rect, b) {
			ret = append(ret, idx)
		}
	}
	return ret
}

// Find returns the position of the last rectangle within bounds containing p,
// or -1 if none does.  Later rectangles are drawn over earlier ones.
func Find(p Point, bounds []Rect) int {
	for idx := len(bounds) - 1; idx >= 0; idx-- {
		if !bounds[idx].Empty() && bounds[idx].Contains(p) {
			return idx
		}
	}
	return -1
}
