package media

// Part is one page (P) of a video, seeded from the view API and then
// edited by the user before dispatch.
type Part struct {
	Cid          int64
	Page         int // 1-indexed
	Ordinal      int // stable dispatch ordinal, independent of slice position
	Title        string
	VideoQuality int
	AudioQuality int
	Selected     bool
	Duration     int // seconds
	ThumbnailURL string

	AvailableVideo []int
	AvailableAudio []int
}

type Video struct {
	ID    string // bvid
	Title string
	Cover string
	Parts []Part
}

// SelectedParts returns the selected parts in their stable array order.
func (v Video) SelectedParts() []Part {
	var out []Part
	for _, p := range v.Parts {
		if p.Selected {
			out = append(out, p)
		}
	}
	return out
}

func containsQuality(available []int, want int) bool {
	for _, q := range available {
		if q == want {
			return true
		}
	}
	return false
}

// Validate checks a single part's user configuration. Quality sets are only
// enforced when the part carries them (metadata may not be loaded yet).
func (p Part) Validate() error {
	if NormalizeTitle(p.Title) == "" {
		return errEmptyTitle
	}
	if len(p.AvailableVideo) > 0 && !containsQuality(p.AvailableVideo, p.VideoQuality) {
		return errVideoQuality
	}
	if len(p.AvailableAudio) > 0 && !containsQuality(p.AvailableAudio, p.AudioQuality) {
		return errAudioQuality
	}
	return nil
}
