package aur

import (
	"strconv"
	"strings"

	"github.com/hashicorp/go-version"
)

// IsNewerVersion reports whether candidate is a newer package version than
// installed. Versions use the pacman layout [epoch:]pkgver[-pkgrel]. When a
// pkgver cannot be parsed as a version the strings are compared lexically.
func IsNewerVersion(installed, candidate string) bool {
	return compareArchVersions(installed, candidate) < 0
}

func compareArchVersions(a, b string) int {
	aEpoch, aVer, aRel := splitArchVersion(a)
	bEpoch, bVer, bRel := splitArchVersion(b)

	if aEpoch != bEpoch {
		if aEpoch < bEpoch {
			return -1
		}
		return 1
	}
	if c := compareVersionStrings(aVer, bVer); c != 0 {
		return c
	}
	return compareVersionStrings(aRel, bRel)
}

func splitArchVersion(v string) (epoch int, pkgver, pkgrel string) {
	v = strings.TrimSpace(v)
	if i := strings.Index(v, ":"); i >= 0 {
		if e, err := strconv.Atoi(v[:i]); err == nil {
			epoch = e
		}
		v = v[i+1:]
	}
	if i := strings.LastIndex(v, "-"); i >= 0 {
		return epoch, v[:i], v[i+1:]
	}
	return epoch, v, ""
}

func compareVersionStrings(a, b string) int {
	if a == b {
		return 0
	}
	va, errA := version.NewVersion(a)
	vb, errB := version.NewVersion(b)
	if errA == nil && errB == nil {
		return va.Compare(vb)
	}
	return strings.Compare(a, b)
}
