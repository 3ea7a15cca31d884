package colors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"#ffffff", White},
		{"000000ff", Black},
		{"#ff000080", Color{1, 0, 0, 128.0 / 255}},
		{"  #00ff00 ", Green},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		require.NoError(t, err, tt.in)
		assert.InDeltaSlice(t, tt.want[:], got[:], 1e-6, tt.in)
	}

	for _, bad := range []string{"", "#fff", "#ggggggff", "#1234567"} {
		_, err := Parse(bad)
		assert.Error(t, err, bad)
	}
}

func TestHexRoundTrip(t *testing.T) {
	c, err := Parse("#336699cc")
	require.NoError(t, err)
	assert.Equal(t, "#336699cc", c.Hex())
	assert.Equal(t, "#ff0000ff", Color{2, -1, 0, 1}.Hex(), "channels are clamped")
}

func TestTextMarshaling(t *testing.T) {
	var c Color
	require.NoError(t, c.UnmarshalText([]byte("#0000ff")))
	assert.Equal(t, Blue, c)
	b, err := c.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "#0000ffff", string(b))
	assert.Error(t, c.UnmarshalText([]byte("blue")))
}

func TestWithAlphaAndRGB(t *testing.T) {
	c := Red.WithAlpha(0.5)
	assert.Equal(t, Color{1, 0, 0, 0.5}, c)
	assert.Equal(t, Color{1, 0, 0, 1}, Red, "WithAlpha copies")
	assert.Equal(t, [3]float32{1, 0, 0}, c.RGB())
}
