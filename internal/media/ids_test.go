package media

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractVideoID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://www.bilibili.com/video/BV1xx411c7mD", "BV1xx411c7mD"},
		{"https://www.bilibili.com/video/BV1xx411c7mD?p=3", "BV1xx411c7mD"},
		{"https://www.bilibili.com/video/av170001", "av170001"},
		{"https://b23.tv/BV1xx411c7mD", "BV1xx411c7mD"},
		{"BV1xx411c7mD", "BV1xx411c7mD"},
	}
	for _, tc := range cases {
		got, err := ExtractVideoID(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		require.Equal(t, tc.want, got)
	}
}

func TestExtractVideoIDRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "   ", "https://example.com/video/BV1xx411c7mD", "https://www.bilibili.com/video/"} {
		_, err := ExtractVideoID(in)
		require.Error(t, err, "input %q", in)
	}
}

func TestPartValidate(t *testing.T) {
	p := Part{Title: "OP", VideoQuality: 80, AudioQuality: 30280,
		AvailableVideo: []int{116, 80, 64}, AvailableAudio: []int{30280, 30216}}
	require.NoError(t, p.Validate())

	p.Title = "   "
	require.Error(t, p.Validate())

	p.Title = "OP"
	p.VideoQuality = 127
	require.Error(t, p.Validate())

	p.VideoQuality = 80
	p.AudioQuality = 30232
	require.Error(t, p.Validate())
}
