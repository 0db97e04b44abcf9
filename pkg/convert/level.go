package convert

import "github.com/stgreenb/FSF/pkg/forgesteel"

// DetectLevel determines the character level used for all gating. The class
// declares it directly in current exports; older ones only imply it through
// the highest populated feature bucket. Never below 1.
func DetectLevel(char *forgesteel.Character) int {
	if char.Class == nil {
		return 1
	}
	if char.Class.Level > 0 {
		return char.Class.Level
	}

	level := 1
	for _, bucket := range char.Class.FeaturesByLevel {
		if bucket.Level > level && len(bucket.Features) > 0 {
			level = bucket.Level
		}
	}
	return level
}
