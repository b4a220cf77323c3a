// Copyright 2026 The Xiyou Diagrams Authors
// SPDX-License-Identifier: Apache-2.0

package panzoom

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func TestZoomInClampsAtMaxScale(t *testing.T) {
	transform := Identity()
	for step := 0; step < 50; step++ {
		transform = transform.ZoomIn(80, 24)
		if transform.Scale > MaxScale+epsilon {
			t.Fatalf("scale %f exceeded MaxScale after %d steps", transform.Scale, step+1)
		}
	}
	if math.Abs(transform.Scale-MaxScale) > epsilon {
		t.Errorf("repeated ZoomIn should converge on MaxScale, got %f", transform.Scale)
	}
}

func TestZoomOutClampsAtMinScale(t *testing.T) {
	transform := Identity()
	for step := 0; step < 50; step++ {
		transform = transform.ZoomOut(80, 24)
		if transform.Scale < MinScale-epsilon {
			t.Fatalf("scale %f fell below MinScale after %d steps", transform.Scale, step+1)
		}
	}
	if math.Abs(transform.Scale-MinScale) > epsilon {
		t.Errorf("repeated ZoomOut should converge on MinScale, got %f", transform.Scale)
	}
}

func TestZoomByCustomStep(t *testing.T) {
	transform := Identity().ZoomInBy(2.0, 80, 24)
	if math.Abs(transform.Scale-2.0) > epsilon {
		t.Errorf("expected scale 2.0 with custom step, got %f", transform.Scale)
	}
	transform = transform.ZoomOutBy(2.0, 80, 24)
	if math.Abs(transform.Scale-1.0) > epsilon {
		t.Errorf("expected scale back at 1.0, got %f", transform.Scale)
	}

	// Factors at or below 1 fall back to the default step.
	fallback := Identity().ZoomInBy(0.5, 80, 24)
	if math.Abs(fallback.Scale-ZoomFactor) > epsilon {
		t.Errorf("expected default step fallback, got %f", fallback.Scale)
	}
}

func TestZoomPreservesViewportCenter(t *testing.T) {
	transform := Transform{Scale: 1.5, X: -7, Y: 3}
	viewWidth, viewHeight := 60, 20

	centerX := float64(viewWidth) / 2
	centerY := float64(viewHeight) / 2
	beforeX := (centerX - transform.X) / transform.Scale
	beforeY := (centerY - transform.Y) / transform.Scale

	zoomed := transform.ZoomIn(viewWidth, viewHeight)
	afterX := (centerX - zoomed.X) / zoomed.Scale
	afterY := (centerY - zoomed.Y) / zoomed.Scale

	if math.Abs(beforeX-afterX) > epsilon || math.Abs(beforeY-afterY) > epsilon {
		t.Errorf("content point under viewport center moved: (%f,%f) -> (%f,%f)",
			beforeX, beforeY, afterX, afterY)
	}
}

func TestZoomAtClampDoesNotDrift(t *testing.T) {
	// At the clamp boundary the scale does not change, so the
	// translation must not change either.
	transform := Transform{Scale: MaxScale, X: 5, Y: -2}
	zoomed := transform.ZoomIn(80, 24)
	if zoomed != transform {
		t.Errorf("zoom at clamp boundary changed the transform: %+v -> %+v", transform, zoomed)
	}
}

func TestResetIsIdempotent(t *testing.T) {
	transform := Transform{Scale: 2.5, X: 100, Y: -40}
	once := transform.Reset()
	twice := once.Reset()
	if once != twice {
		t.Errorf("Reset is not idempotent: %+v vs %+v", once, twice)
	}
	if once != Identity() {
		t.Errorf("Reset should restore identity, got %+v", once)
	}
}

func TestCenterPlacesContentMidViewport(t *testing.T) {
	transform := Identity().Center(20, 10, 80, 24)
	if math.Abs(transform.X-30) > epsilon {
		t.Errorf("X = %f, expected 30", transform.X)
	}
	if math.Abs(transform.Y-7) > epsilon {
		t.Errorf("Y = %f, expected 7", transform.Y)
	}
}

func TestCenterRespectsScale(t *testing.T) {
	transform := Transform{Scale: 2}.Center(20, 10, 80, 24)
	// Scaled content is 40x20; centered at (20, 2).
	if math.Abs(transform.X-20) > epsilon || math.Abs(transform.Y-2) > epsilon {
		t.Errorf("centered translation = (%f,%f), expected (20,2)", transform.X, transform.Y)
	}
	if transform.Scale != 2 {
		t.Errorf("Center changed the scale to %f", transform.Scale)
	}
}

func TestPanIsUnbounded(t *testing.T) {
	// Translation may push content fully out of view; nothing clamps it.
	transform := Identity().Pan(10000, -10000)
	if transform.X != 10000 || transform.Y != -10000 {
		t.Errorf("pan was clamped: %+v", transform)
	}
}

func TestProjectIdentity(t *testing.T) {
	lines := []string{"abc", "def"}
	projected := Identity().Project(lines, 5, 3)

	if len(projected) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(projected))
	}
	if projected[0] != "abc" || projected[1] != "def" || projected[2] != "" {
		t.Errorf("identity projection mismatch: %q", projected)
	}
}

func TestProjectTranslation(t *testing.T) {
	lines := []string{"ab"}
	projected := Transform{Scale: 1, X: 2, Y: 1}.Project(lines, 6, 3)

	if projected[0] != "" {
		t.Errorf("row 0 should be empty, got %q", projected[0])
	}
	if projected[1] != "  ab" {
		t.Errorf("row 1 should be shifted right by 2, got %q", projected[1])
	}
}

func TestProjectScaleDoubles(t *testing.T) {
	lines := []string{"ab"}
	projected := Transform{Scale: 2}.Project(lines, 4, 2)

	// Nearest-neighbor doubling: each source cell covers two view cells.
	if projected[0] != "aabb" {
		t.Errorf("row 0 = %q, expected \"aabb\"", projected[0])
	}
	if projected[1] != "aabb" {
		t.Errorf("row 1 = %q, expected \"aabb\"", projected[1])
	}
}

func TestProjectNeverExceedsViewport(t *testing.T) {
	lines := []string{"0123456789", "0123456789", "0123456789"}
	projected := Transform{Scale: 4}.Project(lines, 6, 2)

	if len(projected) != 2 {
		t.Fatalf("expected exactly 2 lines, got %d", len(projected))
	}
	for index, line := range projected {
		if len([]rune(line)) > 6 {
			t.Errorf("line %d wider than viewport: %q", index, line)
		}
	}
}

func TestProjectOffscreenContent(t *testing.T) {
	lines := []string{"visible"}
	projected := Transform{Scale: 1, X: -100, Y: -100}.Project(lines, 10, 2)
	for index, line := range projected {
		if line != "" {
			t.Errorf("line %d should be blank for off-screen content, got %q", index, line)
		}
	}
}

func TestContentSize(t *testing.T) {
	width, height := ContentSize([]string{"ab", "a", "abcd"})
	if width != 4 || height != 3 {
		t.Errorf("ContentSize = (%d,%d), expected (4,3)", width, height)
	}

	width, height = ContentSize(nil)
	if width != 0 || height != 0 {
		t.Errorf("ContentSize(nil) = (%d,%d), expected (0,0)", width, height)
	}
}
