package version

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

type semver [3]int

func parseSemver(s string) (semver, error) {
	var v semver

	core, _, _ := strings.Cut(strings.TrimPrefix(strings.TrimSpace(s), "v"), "-")
	parts := strings.Split(core, ".")
	if len(parts) != len(v) {
		return v, fmt.Errorf("invalid version %q", s)
	}

	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return v, fmt.Errorf("invalid version %q", s)
		}
		v[i] = n
	}

	return v, nil
}

// Compare orders two major.minor.patch versions: 1 if a is newer, -1 if b is newer, 0 if equal.
// A leading "v" and a pre-release suffix are ignored.
func Compare(a, b string) (int, error) {
	av, err := parseSemver(a)
	if err != nil {
		return 0, err
	}

	bv, err := parseSemver(b)
	if err != nil {
		return 0, err
	}

	diff, found := lo.Find(lo.Zip2(av[:], bv[:]), func(p lo.Tuple2[int, int]) bool {
		return p.A != p.B
	})
	if !found {
		return 0, nil
	}

	return cmp.Compare(diff.A, diff.B), nil
}
