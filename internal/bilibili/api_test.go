package bilibili

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// cannedDoer serves static JSON bodies keyed by URL path substring.
type cannedDoer struct {
	responses map[string]string
}

func (d *cannedDoer) Do(req *http.Request) (*http.Response, error) {
	for substr, body := range d.responses {
		if strings.Contains(req.URL.Path, substr) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(body)),
			}, nil
		}
	}
	return &http.Response{StatusCode: http.StatusNotFound, Body: io.NopCloser(strings.NewReader(""))}, nil
}

func TestFetchVideoParsesParts(t *testing.T) {
	doer := &cannedDoer{responses: map[string]string{
		"/x/web-interface/view": `{"code":0,"data":{"bvid":"BV1xx411c7mD","title":"My Video","pic":"https://i0.hdslb.com/cover.jpg",
			"pages":[{"cid":1000,"page":1,"part":"OP","duration":90},{"cid":1001,"page":2,"part":"","duration":1200}]}}`,
	}}
	video, err := FetchVideo(context.Background(), doer, "BV1xx411c7mD")
	require.NoError(t, err)
	require.Equal(t, "BV1xx411c7mD", video.ID)
	require.Equal(t, "My Video", video.Title)
	require.Len(t, video.Parts, 2)
	require.Equal(t, "OP", video.Parts[0].Title)
	require.Equal(t, 1, video.Parts[0].Ordinal)
	require.Equal(t, "My Video P2", video.Parts[1].Title, "empty part name falls back to title + page")
	require.Equal(t, 2, video.Parts[1].Ordinal)
	require.True(t, video.Parts[0].Selected)
}

func TestFetchVideoMapsAPICodes(t *testing.T) {
	cases := []struct {
		code int
		want string
	}{
		{-404, "ERR::VIDEO_NOT_FOUND"},
		{-101, "ERR::COOKIE_MISSING"},
		{-412, "ERR::RATE_LIMITED"},
		{-500, "ERR::API_ERROR"},
	}
	for _, tc := range cases {
		doer := &cannedDoer{responses: map[string]string{
			"/x/web-interface/view": `{"code":` + strconv.Itoa(tc.code) + `}`,
		}}
		_, err := FetchVideo(context.Background(), doer, "BV1xx411c7mD")
		require.Error(t, err)
		require.Contains(t, err.Error(), tc.want, "code %d", tc.code)
	}
}

func TestFetchPlayInfoQualityFallback(t *testing.T) {
	doer := &cannedDoer{responses: map[string]string{
		"/x/player/playurl": `{"code":0,"data":{"accept_quality":[80,64],"dash":{
			"video":[{"id":80,"baseUrl":"https://cdn/v80"},{"id":64,"baseUrl":"https://cdn/v64"}],
			"audio":[{"id":30216,"baseUrl":"https://cdn/a30216"}]}}}`,
	}}
	info, err := fetchPlayInfo(context.Background(), doer, "BV1xx411c7mD", 1000, 120, 30280)
	require.NoError(t, err)
	require.Equal(t, 80, info.VideoQuality, "4K request falls back to the nearest lower quality")
	require.Equal(t, "https://cdn/v80", info.VideoURL)
	require.Equal(t, 30216, info.AudioQuality)
}

func TestFetchPlayInfoWithoutStreams(t *testing.T) {
	doer := &cannedDoer{responses: map[string]string{
		"/x/player/playurl": `{"code":0,"data":{"dash":{"video":[],"audio":[]}}}`,
	}}
	_, err := fetchPlayInfo(context.Background(), doer, "BV1xx411c7mD", 1000, 80, 30280)
	require.Error(t, err)
	require.Contains(t, err.Error(), "ERR::QUALITY_NOT_FOUND")
}
