package locale

import (
	"github.com/j4rviscmd/bilibili-downloader-gui-sub000/internal/backend"
)

const DefaultLanguage = "en"

var messages = map[string]map[string]string{
	"en": {
		"error.video_not_found":   "Video not found. It may have been deleted or made private.",
		"error.cookie_missing":    "A login cookie (SESSDATA) is required for this video or quality.",
		"error.api_error":         "The bilibili API returned an error. Please try again later.",
		"error.file_exists":       "The output file already exists.",
		"error.disk_full":         "Not enough disk space to finish the download.",
		"error.merge_failed":      "Merging video and audio streams failed.",
		"error.quality_not_found": "The requested quality is not available for this part.",
		"error.rate_limited":      "Too many requests. Please wait a moment and retry.",
		"error.network":           "Network error",
	},
	"ja": {
		"error.video_not_found":   "動画が見つかりません。削除または非公開になっている可能性があります。",
		"error.cookie_missing":    "この動画・画質にはログインCookie (SESSDATA) が必要です。",
		"error.api_error":         "bilibili APIがエラーを返しました。しばらくしてから再試行してください。",
		"error.file_exists":       "出力ファイルは既に存在します。",
		"error.disk_full":         "ディスクの空き容量が不足しています。",
		"error.merge_failed":      "映像と音声の結合に失敗しました。",
		"error.quality_not_found": "指定された画質はこのパートでは利用できません。",
		"error.rate_limited":      "リクエストが多すぎます。少し待ってから再試行してください。",
		"error.network":           "ネットワークエラー",
	},
}

// Message resolves a presentation key for the language, falling back to
// English and then to the key itself.
func Message(lang, key string) string {
	if table, ok := messages[lang]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := messages[DefaultLanguage][key]; ok {
		return msg
	}
	return key
}

// Render produces the user-facing message for a classified fault.
// Unclassified faults pass through their raw string unchanged.
func Render(lang string, f backend.Fault) string {
	if f.Key == "" {
		return f.Raw
	}
	msg := Message(lang, f.Key)
	if f.Kind == backend.KindNetwork && f.Detail != "" {
		return msg + ": " + f.Detail
	}
	return msg
}
