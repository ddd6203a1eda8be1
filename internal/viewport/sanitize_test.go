package viewport

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"annotation-browser/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

func TestSanitizeRejectsDegenerateGeometry(t *testing.T) {
	tests := []struct {
		name     string
		image    geometry.Size
		viewport geometry.Size
		wantName string
	}{
		{"zero image width", geometry.NewSize(0, 100), geometry.NewSize(100, 100), "image"},
		{"negative image height", geometry.NewSize(100, -1), geometry.NewSize(100, 100), "image"},
		{"NaN image", geometry.NewSize(math.NaN(), 100), geometry.NewSize(100, 100), "image"},
		{"zero viewport", geometry.NewSize(100, 100), geometry.NewSize(0, 0), "viewport"},
		{"infinite viewport", geometry.NewSize(100, 100), geometry.NewSize(math.Inf(1), 10), "viewport"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Sanitize(Identity(), tt.image, tt.viewport)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidGeometry))

			var geomErr *GeometryError
			require.True(t, errors.As(err, &geomErr))
			assert.Equal(t, tt.wantName, geomErr.Name)
		})
	}
}

func TestSanitizeScenarios(t *testing.T) {
	square := geometry.NewSize(1000, 1000)
	view := geometry.NewSize(500, 500)

	tests := []struct {
		name      string
		image     geometry.Size
		viewport  geometry.Size
		candidate Transform
		want      Transform
	}{
		{
			name:      "zoom out below coverage snaps to fill",
			image:     square,
			viewport:  view,
			candidate: Transform{ScaleX: 0.4, ScaleY: 0.4},
			want:      Transform{ScaleX: 0.5, ScaleY: 0.5},
		},
		{
			name:      "pan towards top left is clamped",
			image:     square,
			viewport:  view,
			candidate: Transform{X: 50, Y: 50, ScaleX: 1, ScaleY: 1},
			want:      Transform{ScaleX: 1, ScaleY: 1},
		},
		{
			name:      "pan past bottom right stops at the edge",
			image:     square,
			viewport:  view,
			candidate: Transform{X: -600, Y: -700, ScaleX: 1, ScaleY: 1},
			want:      Transform{X: -500, Y: -500, ScaleX: 1, ScaleY: 1},
		},
		{
			name:      "legal transform is unchanged",
			image:     square,
			viewport:  view,
			candidate: Transform{X: -120, Y: -80, ScaleX: 2, ScaleY: 2},
			want:      Transform{X: -120, Y: -80, ScaleX: 2, ScaleY: 2},
		},
		{
			name:      "small image is scaled up to fill",
			image:     geometry.NewSize(200, 200),
			viewport:  view,
			candidate: Identity(),
			want:      Transform{ScaleX: 2.5, ScaleY: 2.5},
		},
		{
			name:      "diverged scales unify to the larger",
			image:     square,
			viewport:  view,
			candidate: Transform{X: -10, Y: -10, ScaleX: 1, ScaleY: 3},
			want:      Transform{X: -10, Y: -10, ScaleX: 3, ScaleY: 3},
		},
		{
			name:      "wide image snaps height only when x is pinned",
			image:     geometry.NewSize(1000, 500),
			viewport:  view,
			candidate: Transform{ScaleX: 0.6, ScaleY: 0.6},
			want:      Transform{ScaleX: 1, ScaleY: 1},
		},
		{
			name:      "wide image leaves a vertical gap when x is not pinned",
			image:     geometry.NewSize(1000, 500),
			viewport:  view,
			candidate: Transform{X: -50, ScaleX: 0.6, ScaleY: 0.6},
			want:      Transform{X: -50, ScaleX: 0.6, ScaleY: 0.6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sanitize(tt.candidate, tt.image, tt.viewport)
			require.NoError(t, err)
			assert.InDelta(t, tt.want.X, got.X, tolerance)
			assert.InDelta(t, tt.want.Y, got.Y, tolerance)
			assert.InDelta(t, tt.want.ScaleX, got.ScaleX, tolerance)
			assert.InDelta(t, tt.want.ScaleY, got.ScaleY, tolerance)
		})
	}
}

func TestSanitizeDivergedScales(t *testing.T) {
	square := geometry.NewSize(100, 100)

	tests := []struct {
		name      string
		candidate Transform
		first     Transform
		second    Transform
	}{
		{
			name:      "pinned x snaps y scale then unifies",
			candidate: Transform{X: -10, Y: -500, ScaleX: 1, ScaleY: 2},
			first:     Transform{X: 0, Y: -100, ScaleX: 1, ScaleY: 1},
			second:    Transform{X: 0, Y: 0, ScaleX: 1, ScaleY: 1},
		},
		{
			name:      "covering y keeps the larger scale",
			candidate: Transform{X: -10, Y: -50, ScaleX: 1, ScaleY: 3},
			first:     Transform{X: 0, Y: -50, ScaleX: 3, ScaleY: 3},
			second:    Transform{X: 0, Y: -50, ScaleX: 3, ScaleY: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, err := Sanitize(tt.candidate, square, square)
			require.NoError(t, err)
			assert.Equal(t, tt.first, first)

			second, err := Sanitize(first, square, square)
			require.NoError(t, err)
			assert.Equal(t, tt.second, second)
		})
	}
}

// randomCase draws an image and viewport with the same aspect ratio and a
// uniform-scale candidate that may be anywhere from far off-screen to zoomed
// in. ZoomAt and Translate only produce uniform scales.
func randomCase(r *rand.Rand) (Transform, geometry.Size, geometry.Size) {
	aspect := 0.5 + 1.5*r.Float64()
	iw := 50 + 3000*r.Float64()
	vw := 50 + 1500*r.Float64()
	image := geometry.NewSize(iw, iw*aspect)
	viewport := geometry.NewSize(vw, vw*aspect)

	candidate := Transform{
		X:      -4000 + 4500*r.Float64(),
		Y:      -4000 + 4500*r.Float64(),
		ScaleX: 0.01 + 5*r.Float64(),
	}
	candidate.ScaleY = candidate.ScaleX
	return candidate, image, viewport
}

func TestSanitizeProperties(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))

	for i := 0; i < 5000; i++ {
		candidate, image, viewport := randomCase(r)

		got, err := Sanitize(candidate, image, viewport)
		require.NoError(t, err)

		again, err := Sanitize(got, image, viewport)
		require.NoError(t, err)
		require.InDelta(t, got.X, again.X, tolerance, "idempotent X for %v", candidate)
		require.InDelta(t, got.Y, again.Y, tolerance, "idempotent Y for %v", candidate)
		require.InDelta(t, got.ScaleX, again.ScaleX, tolerance, "idempotent scale for %v", candidate)

		require.Equal(t, got.ScaleX, got.ScaleY, "uniform scale for %v", candidate)
		require.LessOrEqual(t, got.X, 0.0)
		require.LessOrEqual(t, got.Y, 0.0)

		if image.Width*got.ScaleX < viewport.Width-tolerance {
			require.InDelta(t, viewport.Width/image.Width, got.ScaleX, tolerance)
			require.Zero(t, got.X)
		}
		if image.Height*got.ScaleY < viewport.Height-tolerance {
			require.InDelta(t, viewport.Height/image.Height, got.ScaleY, tolerance)
			require.Zero(t, got.Y)
		}

		// The image covers the viewport on both axes.
		require.GreaterOrEqual(t, image.Width*got.ScaleX+got.X, viewport.Width-1e-6)
		require.GreaterOrEqual(t, image.Height*got.ScaleY+got.Y, viewport.Height-1e-6)
	}
}
