package media

// Quality ids follow the playurl API. Higher id means higher quality for
// both tables.
var VideoQualityLabels = map[int]string{
	127: "8K",
	120: "4K",
	116: "1080P60",
	80:  "1080P",
	64:  "720P",
	32:  "480P",
	16:  "360P",
}

var AudioQualityLabels = map[int]string{
	30280: "192K",
	30232: "132K",
	30216: "64K",
}

func VideoQualityLabel(id int) string {
	if label, ok := VideoQualityLabels[id]; ok {
		return label
	}
	return "unknown"
}

func AudioQualityLabel(id int) string {
	if label, ok := AudioQualityLabels[id]; ok {
		return label
	}
	return "unknown"
}

// NearestQuality returns the requested id when available, otherwise the
// highest available id not above the request, otherwise the lowest
// available id. Returns 0 for an empty set.
func NearestQuality(available []int, want int) int {
	best := 0
	lowest := 0
	for _, q := range available {
		if q == want {
			return q
		}
		if lowest == 0 || q < lowest {
			lowest = q
		}
		if q < want && q > best {
			best = q
		}
	}
	if best != 0 {
		return best
	}
	return lowest
}
