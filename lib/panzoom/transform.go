// Copyright 2026 The Xiyou Diagrams Authors
// SPDX-License-Identifier: Apache-2.0

// Package panzoom implements the pan/zoom transform applied to a
// rendered diagram inside a fixed-size viewport.
//
// A Transform is a plain value (scale + translation) with explicit
// operations, owned by exactly one diagram surface. Keeping it a value
// object with pure methods means the coordinate math is unit-testable
// without a terminal: the model calls the operations from key handlers
// and projects the diagram grid through the transform at render time.
//
// Translation is unclamped: the content may be dragged fully out of
// view. Reset and Center always bring it back.
package panzoom

// Zoom limits and step. Repeated ZoomIn/ZoomOut converge on the
// limits and never overshoot them.
const (
	MinScale   = 0.2
	MaxScale   = 4.0
	ZoomFactor = 1.25
)

// Transform is the scale and translation applied to a diagram grid.
// Screen cell (x, y) shows content cell ((x-X)/Scale, (y-Y)/Scale).
// The zero value is not meaningful; use Identity.
type Transform struct {
	Scale float64
	X     float64
	Y     float64
}

// Identity returns the neutral transform: scale 1, no translation.
func Identity() Transform {
	return Transform{Scale: 1}
}

// ZoomIn scales up by one step, keeping the content point under the
// viewport center fixed. The viewport size is a parameter so the focal
// math stays explicit rather than depending on stored display state.
func (transform Transform) ZoomIn(viewWidth, viewHeight int) Transform {
	return transform.zoomAt(ZoomFactor, viewWidth, viewHeight)
}

// ZoomOut scales down by one step, keeping the viewport center fixed.
func (transform Transform) ZoomOut(viewWidth, viewHeight int) Transform {
	return transform.zoomAt(1/ZoomFactor, viewWidth, viewHeight)
}

// ZoomInBy and ZoomOutBy apply a caller-chosen step factor instead of
// the default. The factor must be greater than 1; values at or below 1
// fall back to the default step.
func (transform Transform) ZoomInBy(factor float64, viewWidth, viewHeight int) Transform {
	if factor <= 1 {
		factor = ZoomFactor
	}
	return transform.zoomAt(factor, viewWidth, viewHeight)
}

func (transform Transform) ZoomOutBy(factor float64, viewWidth, viewHeight int) Transform {
	if factor <= 1 {
		factor = ZoomFactor
	}
	return transform.zoomAt(1/factor, viewWidth, viewHeight)
}

// zoomAt multiplies the scale by factor, clamped to [MinScale,
// MaxScale], and recomputes the translation so the content point that
// was under the viewport center stays under it.
func (transform Transform) zoomAt(factor float64, viewWidth, viewHeight int) Transform {
	newScale := transform.Scale * factor
	if newScale > MaxScale {
		newScale = MaxScale
	}
	if newScale < MinScale {
		newScale = MinScale
	}
	if newScale == transform.Scale {
		return transform
	}

	centerX := float64(viewWidth) / 2
	centerY := float64(viewHeight) / 2

	// Content point currently under the viewport center.
	contentX := (centerX - transform.X) / transform.Scale
	contentY := (centerY - transform.Y) / transform.Scale

	return Transform{
		Scale: newScale,
		X:     centerX - contentX*newScale,
		Y:     centerY - contentY*newScale,
	}
}

// Reset restores the identity transform. Calling it twice yields the
// same result as once.
func (transform Transform) Reset() Transform {
	return Identity()
}

// Center recomputes the translation so the scaled content bounding box
// is centered in the viewport. The scale is unchanged.
func (transform Transform) Center(contentWidth, contentHeight, viewWidth, viewHeight int) Transform {
	transform.X = (float64(viewWidth) - float64(contentWidth)*transform.Scale) / 2
	transform.Y = (float64(viewHeight) - float64(contentHeight)*transform.Scale) / 2
	return transform
}

// Pan shifts the translation by the given screen-cell delta. Used both
// for keyboard panning and for active pointer drags, where the delta
// tracks pointer movement 1:1. No bounds are applied.
func (transform Transform) Pan(deltaX, deltaY float64) Transform {
	transform.X += deltaX
	transform.Y += deltaY
	return transform
}
