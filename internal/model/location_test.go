package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPosition(t *testing.T) {
	tests := []struct {
		name       string
		x, y, z    float64
		yaw, pitch float32
		want       Position
	}{
		{
			name: "zero values",
			want: Position{},
		},
		{
			name: "positive coordinates",
			x:    100, y: 200, z: 300, yaw: 10, pitch: 20,
			want: Position{X: 100, Y: 200, Z: 300, Yaw: 10, Pitch: 20},
		},
		{
			name: "negative coordinates",
			x:    -100, y: -64, z: -300, yaw: -180, pitch: -90,
			want: Position{X: -100, Y: -64, Z: -300, Yaw: -180, Pitch: -90},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPosition(tt.x, tt.y, tt.z, tt.yaw, tt.pitch)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPosition_WithOrientation(t *testing.T) {
	original := NewPosition(100, 200, 300, 10, 20)

	got := original.WithOrientation(90, -45)
	want := Position{X: 100, Y: 200, Z: 300, Yaw: 90, Pitch: -45}
	assert.Equal(t, want, got)

	// immutability: original untouched
	assert.EqualValues(t, 10, original.Yaw)
	assert.EqualValues(t, 20, original.Pitch)
}

func TestPosition_WithCoordinates(t *testing.T) {
	original := NewPosition(100, 200, 300, 10, 20)

	got := original.WithCoordinates(400, 500, 600)
	want := Position{X: 400, Y: 500, Z: 600, Yaw: 10, Pitch: 20}
	assert.Equal(t, want, got)

	assert.EqualValues(t, 100, original.X)
	assert.EqualValues(t, 200, original.Y)
	assert.EqualValues(t, 300, original.Z)
}

func TestPosition_DistanceSquared(t *testing.T) {
	tests := []struct {
		name string
		a, b Position
		want float64
	}{
		{
			name: "same position",
			a:    NewPosition(0, 0, 0, 0, 0),
			b:    NewPosition(0, 0, 0, 0, 0),
			want: 0,
		},
		{
			name: "3-4-5 triangle",
			a:    NewPosition(0, 0, 0, 0, 0),
			b:    NewPosition(3, 4, 0, 0, 0),
			want: 25,
		},
		{
			name: "3D distance",
			a:    NewPosition(0, 0, 0, 0, 0),
			b:    NewPosition(1, 2, 2, 0, 0),
			want: 9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.DistanceSquared(tt.b))
			assert.Equal(t, tt.want, tt.b.DistanceSquared(tt.a), "DistanceSquared must be symmetric")
		})
	}
}

func TestPosition_ZeroValue(t *testing.T) {
	var p Position
	assert.Equal(t, Position{}, p)
	assert.Equal(t, float64(25), p.DistanceSquared(NewPosition(3, 4, 0, 0, 0)))
}
