package media

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNearestQuality(t *testing.T) {
	available := []int{116, 80, 64, 32}
	require.Equal(t, 80, NearestQuality(available, 80), "exact match")
	require.Equal(t, 116, NearestQuality(available, 120), "falls back to next lower")
	require.Equal(t, 32, NearestQuality(available, 16), "lowest when request is below all")
	require.Equal(t, 0, NearestQuality(nil, 80), "empty set")
}

func TestQualityLabels(t *testing.T) {
	require.Equal(t, "1080P", VideoQualityLabel(80))
	require.Equal(t, "192K", AudioQualityLabel(30280))
	require.Equal(t, "unknown", VideoQualityLabel(42))
}
