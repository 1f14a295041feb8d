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

package hittest

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIntersects(t *testing.T) {
	bar := Rect{Left: 10, Top: 20, Right: 30, Bottom: 100}
	for _, test := range []struct {
		description string
		rect        Rect
		bounds      Rect
		want        bool
	}{{
		description: "rect inside bar",
		rect:        Rect{Left: 15, Top: 30, Right: 20, Bottom: 40},
		bounds:      bar,
		want:        true,
	}, {
		description: "bar inside rect",
		rect:        Rect{Left: 0, Top: 0, Right: 200, Bottom: 200},
		bounds:      bar,
		want:        true,
	}, {
		description: "partial overlap",
		rect:        Rect{Left: 25, Top: 90, Right: 50, Bottom: 150},
		bounds:      bar,
		want:        true,
	}, {
		description: "touching edges count",
		rect:        Rect{Left: 30, Top: 100, Right: 40, Bottom: 110},
		bounds:      bar,
		want:        true,
	}, {
		description: "left of bar",
		rect:        Rect{Left: 0, Top: 30, Right: 9, Bottom: 40},
		bounds:      bar,
		want:        false,
	}, {
		description: "below bar",
		rect:        Rect{Left: 15, Top: 101, Right: 20, Bottom: 140},
		bounds:      bar,
		want:        false,
	}, {
		description: "zero-height bar never intersects",
		rect:        Rect{Left: 0, Top: 0, Right: 200, Bottom: 200},
		bounds:      Rect{Left: 10, Top: 100, Right: 30, Bottom: 100},
		want:        false,
	}, {
		description: "zero-width bar never intersects",
		rect:        Rect{Left: 0, Top: 0, Right: 200, Bottom: 200},
		bounds:      Rect{Left: 10, Top: 20, Right: 10, Bottom: 100},
		want:        false,
	}, {
		description: "zero-extent rect touching a bar",
		rect:        Rect{Left: 15, Top: 50, Right: 15, Bottom: 50},
		bounds:      bar,
		want:        true,
	}} {
		t.Run(test.description, func(t *testing.T) {
			if got := Intersects(test.rect, test.bounds); got != test.want {
				t.Errorf("Intersects(%v, %v) = %t, want %t", test.rect, test.bounds, got, test.want)
			}
		})
	}
}

func TestRectFromPoints(t *testing.T) {
	for _, test := range []struct {
		description string
		a, b        Point
		want        Rect
	}{{
		description: "down and right",
		a:           Point{1, 2},
		b:           Point{5, 8},
		want:        Rect{Left: 1, Top: 2, Right: 5, Bottom: 8},
	}, {
		description: "up and left",
		a:           Point{5, 8},
		b:           Point{1, 2},
		want:        Rect{Left: 1, Top: 2, Right: 5, Bottom: 8},
	}, {
		description: "mixed",
		a:           Point{5, 2},
		b:           Point{1, 8},
		want:        Rect{Left: 1, Top: 2, Right: 5, Bottom: 8},
	}} {
		t.Run(test.description, func(t *testing.T) {
			got := RectFromPoints(test.a, test.b)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("RectFromPoints() = diff (-want +got):\n%s", diff)
			}
			if got.Width() != 4 || got.Height() != 6 {
				t.Errorf("got size %vx%v, want 4x6", got.Width(), got.Height())
			}
		})
	}
}

func TestHitsAndFind(t *testing.T) {
	bounds := []Rect{
		{Left: 0, Top: 50, Right: 10, Bottom: 100},
		{Left: 20, Top: 100, Right: 30, Bottom: 100},
		{Left: 40, Top: 0, Right: 50, Bottom: 100},
		{Left: 40, Top: 60, Right: 50, Bottom: 100},
	}
	if diff := cmp.Diff([]int{0, 2, 3}, Hits(Rect{Left: 5, Top: 70, Right: 45, Bottom: 80}, bounds)); diff != "" {
		t.Errorf("Hits() = diff (-want +got):\n%s", diff)
	}
	for _, test := range []struct {
		description string
		p           Point
		want        int
	}{{
		description: "single bar",
		p:           Point{5, 60},
		want:        0,
	}, {
		description: "overlapping bars prefer the later one",
		p:           Point{45, 70},
		want:        3,
	}, {
		description: "empty bar is not a target",
		p:           Point{25, 100},
		want:        -1,
	}, {
		description: "empty space",
		p:           Point{15, 10},
		want:        -1,
	}} {
		t.Run(test.description, func(t *testing.T) {
			if got := Find(test.p, bounds); got != test.want {
				t.Errorf("Find(%v) = %d, want %d", test.p, got, test.want)
			}
		})
	}
}
