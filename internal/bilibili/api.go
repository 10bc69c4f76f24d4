package bilibili

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/j4rviscmd/bilibili-downloader-gui-sub000/internal/media"
	"github.com/j4rviscmd/bilibili-downloader-gui-sub000/internal/utils"
)

const apiBase = "https://api.bilibili.com"

// API and network failures are surfaced in the ERR:: wire grammar so the
// classifier is the single place that interprets them.
type viewResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Bvid  string `json:"bvid"`
		Title string `json:"title"`
		Pic   string `json:"pic"`
		Pages []struct {
			Cid      int64  `json:"cid"`
			Page     int    `json:"page"`
			Part     string `json:"part"`
			Duration int    `json:"duration"`
		} `json:"pages"`
	} `json:"data"`
}

type playurlResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		AcceptQuality []int `json:"accept_quality"`
		Dash          struct {
			Video []dashStream `json:"video"`
			Audio []dashStream `json:"audio"`
		} `json:"dash"`
	} `json:"data"`
}

type dashStream struct {
	ID        int    `json:"id"`
	BaseURL   string `json:"baseUrl"`
	Bandwidth int64  `json:"bandwidth"`
}

type playInfo struct {
	VideoURL     string
	AudioURL     string
	VideoQuality int
	AudioQuality int
}

func apiError(code int) error {
	switch code {
	case -404, 62002, 62004:
		return errors.New("ERR::VIDEO_NOT_FOUND")
	case -101, -102, 87007, 87008:
		return errors.New("ERR::COOKIE_MISSING")
	case -412, -509:
		return errors.New("ERR::RATE_LIMITED")
	default:
		return fmt.Errorf("ERR::API_ERROR (code %d)", code)
	}
}

func getJSON(ctx context.Context, client utils.HTTPDoer, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("ERR::NETWORK::%v", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return errors.New("ERR::CANCELLED")
		}
		return fmt.Errorf("ERR::NETWORK::%v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusPreconditionFailed {
		return errors.New("ERR::RATE_LIMITED")
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ERR::API_ERROR (http %d)", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ERR::NETWORK::%v", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("ERR::API_ERROR (bad response: %v)", err)
	}
	return nil
}

// FetchVideo loads title and part metadata for a bvid or avid and seeds the
// editable part list.
func FetchVideo(ctx context.Context, client utils.HTTPDoer, videoID string) (media.Video, error) {
	query := url.Values{}
	if strings.HasPrefix(videoID, "av") {
		query.Set("aid", strings.TrimPrefix(videoID, "av"))
	} else {
		query.Set("bvid", videoID)
	}
	var view viewResponse
	if err := getJSON(ctx, client, apiBase+"/x/web-interface/view?"+query.Encode(), &view); err != nil {
		return media.Video{}, err
	}
	if view.Code != 0 {
		return media.Video{}, apiError(view.Code)
	}
	video := media.Video{
		ID:    view.Data.Bvid,
		Title: view.Data.Title,
		Cover: view.Data.Pic,
	}
	for i, page := range view.Data.Pages {
		title := page.Part
		if strings.TrimSpace(title) == "" {
			title = fmt.Sprintf("%s P%d", view.Data.Title, page.Page)
		}
		video.Parts = append(video.Parts, media.Part{
			Cid:          page.Cid,
			Page:         page.Page,
			Ordinal:      i + 1,
			Title:        title,
			Duration:     page.Duration,
			ThumbnailURL: view.Data.Pic,
			Selected:     true,
		})
	}
	return video, nil
}

// fetchPlayInfo resolves DASH stream URLs for a part, falling back to the
// nearest available quality when the requested ids are missing.
func fetchPlayInfo(ctx context.Context, client utils.HTTPDoer, bvid string, cid int64, videoQuality, audioQuality int) (playInfo, error) {
	query := url.Values{}
	query.Set("bvid", bvid)
	query.Set("cid", fmt.Sprint(cid))
	query.Set("qn", fmt.Sprint(videoQuality))
	query.Set("fnval", "16") // DASH
	var resp playurlResponse
	if err := getJSON(ctx, client, apiBase+"/x/player/playurl?"+query.Encode(), &resp); err != nil {
		return playInfo{}, err
	}
	if resp.Code != 0 {
		return playInfo{}, apiError(resp.Code)
	}
	if len(resp.Data.Dash.Video) == 0 {
		return playInfo{}, errors.New("ERR::QUALITY_NOT_FOUND")
	}

	info := playInfo{}
	if stream := pickStream(resp.Data.Dash.Video, videoQuality); stream != nil {
		info.VideoURL = stream.BaseURL
		info.VideoQuality = stream.ID
	}
	if info.VideoURL == "" {
		return playInfo{}, errors.New("ERR::QUALITY_NOT_FOUND")
	}
	if stream := pickStream(resp.Data.Dash.Audio, audioQuality); stream != nil {
		info.AudioURL = stream.BaseURL
		info.AudioQuality = stream.ID
	}
	return info, nil
}

func pickStream(streams []dashStream, quality int) *dashStream {
	if len(streams) == 0 {
		return nil
	}
	ids := make([]int, 0, len(streams))
	for _, s := range streams {
		ids = append(ids, s.ID)
	}
	chosen := media.NearestQuality(ids, quality)
	for i := range streams {
		if streams[i].ID == chosen {
			return &streams[i]
		}
	}
	return nil
}

// AvailableQualities returns the selectable video and audio quality ids
// for a part, for seeding the part editor.
func AvailableQualities(ctx context.Context, client utils.HTTPDoer, bvid string, cid int64) ([]int, []int, error) {
	query := url.Values{}
	query.Set("bvid", bvid)
	query.Set("cid", fmt.Sprint(cid))
	query.Set("fnval", "16")
	var resp playurlResponse
	if err := getJSON(ctx, client, apiBase+"/x/player/playurl?"+query.Encode(), &resp); err != nil {
		return nil, nil, err
	}
	if resp.Code != 0 {
		return nil, nil, apiError(resp.Code)
	}
	var audio []int
	for _, s := range resp.Data.Dash.Audio {
		audio = append(audio, s.ID)
	}
	return resp.Data.AcceptQuality, audio, nil
}
