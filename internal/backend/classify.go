package backend

import "strings"

type Kind string

const (
	KindNotFound           Kind = "NotFound"
	KindAuthMissing        Kind = "AuthMissing"
	KindUpstreamAPIError   Kind = "UpstreamApiError"
	KindOutputConflict     Kind = "OutputConflict"
	KindDiskFull           Kind = "DiskFull"
	KindMergeFailed        Kind = "MergeFailed"
	KindQualityUnavailable Kind = "QualityUnavailable"
	KindRateLimited        Kind = "RateLimited"
	KindNetwork            Kind = "NetworkError"
	KindCancelled          Kind = "Cancelled"
	KindUnclassified       Kind = "Unclassified"
)

// Fault is the classified form of a backend failure string.
type Fault struct {
	Kind   Kind
	Key    string // presentation key; empty for unclassified
	Detail string // NETWORK detail, when present
	Raw    string
}

// Cancelled faults are absorbed by the orchestrator and never shown.
func (f Fault) Cancelled() bool {
	return f.Kind == KindCancelled
}

const networkPrefix = "ERR::NETWORK::"

// Classification is ordered: first substring match wins. NETWORK must come
// before the generic table tail so its detail suffix is preserved.
var faultTable = []struct {
	substr string
	kind   Kind
	key    string
}{
	{"ERR::VIDEO_NOT_FOUND", KindNotFound, "error.video_not_found"},
	{"ERR::COOKIE_MISSING", KindAuthMissing, "error.cookie_missing"},
	{"ERR::API_ERROR", KindUpstreamAPIError, "error.api_error"},
	{"ERR::FILE_EXISTS", KindOutputConflict, "error.file_exists"},
	{"ERR::DISK_FULL", KindDiskFull, "error.disk_full"},
	{"ERR::MERGE_FAILED", KindMergeFailed, "error.merge_failed"},
	{"ERR::QUALITY_NOT_FOUND", KindQualityUnavailable, "error.quality_not_found"},
	{"ERR::RATE_LIMITED", KindRateLimited, "error.rate_limited"},
	{"ERR::NETWORK", KindNetwork, "error.network"},
	{"ERR::CANCELLED", KindCancelled, "error.cancelled"},
}

// Classify is the sole parsing site for the string-based wire format
// crossing the backend boundary. Unmatched strings pass through raw.
func Classify(raw string) Fault {
	for _, row := range faultTable {
		if !strings.Contains(raw, row.substr) {
			continue
		}
		f := Fault{Kind: row.kind, Key: row.key, Raw: raw}
		if row.kind == KindNetwork {
			if idx := strings.Index(raw, networkPrefix); idx >= 0 {
				f.Detail = raw[idx+len(networkPrefix):]
			}
		}
		return f
	}
	return Fault{Kind: KindUnclassified, Raw: raw}
}
