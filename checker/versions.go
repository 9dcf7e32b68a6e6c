package checker

import (
	"sort"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// parseGameVersion parses a Minecraft version string. Snapshot and other
// non-release identifiers that do not parse sort as 0.0.0, i.e. last in a
// descending order.
func parseGameVersion(s string) *goversion.Version {
	v, err := goversion.NewVersion(s)
	if err != nil {
		v, _ = goversion.NewVersion("0.0.0")
	}
	return v
}

// SortGameVersions returns the versions sorted newest first.
func SortGameVersions(versions []string) []string {
	sorted := make([]string, len(versions))
	copy(sorted, versions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return parseGameVersion(sorted[i]).GreaterThan(parseGameVersion(sorted[j]))
	})
	return sorted
}

// HighestGameVersion returns the newest version in the list, or "" for an
// empty list.
func HighestGameVersion(versions []string) string {
	if len(versions) == 0 {
		return ""
	}
	return SortGameVersions(versions)[0]
}

// FindCommonVersion returns the oldest non-snapshot release shared by every
// non-empty version set, or "" when there is none. Used purely as a report
// suggestion when mods turn out incompatible with the requested version.
func FindCommonVersion(versionSets [][]string) string {
	var common map[string]bool
	for _, set := range versionSets {
		if len(set) == 0 {
			continue
		}
		if common == nil {
			common = make(map[string]bool, len(set))
			for _, v := range set {
				common[v] = true
			}
			continue
		}
		next := make(map[string]bool, len(common))
		for _, v := range set {
			if common[v] {
				next[v] = true
			}
		}
		common = next
	}
	if len(common) == 0 {
		return ""
	}

	var releases []string
	for v := range common {
		if strings.Contains(v, "w") || strings.Contains(v, "snapshot") {
			continue
		}
		releases = append(releases, v)
	}
	if len(releases) == 0 {
		return ""
	}
	sorted := SortGameVersions(releases)
	return sorted[len(sorted)-1]
}
