// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"math/rand/v2"
	"strings"
)

// PickKey splits a comma-separated key list and returns one entry chosen
// with intn (math/rand/v2.IntN when nil). Blank entries are ignored.
func PickKey(keys string, intn func(int) int) string {
	var list []string
	for _, k := range strings.Split(keys, ",") {
		if k = strings.TrimSpace(k); k != "" {
			list = append(list, k)
		}
	}
	switch len(list) {
	case 0:
		return ""
	case 1:
		return list[0]
	}
	if intn == nil {
		intn = rand.IntN
	}
	return list[intn(len(list))]
}

// CompletePath appends suffix to base unless base already ends with it.
// Trailing slashes on base are dropped.
func CompletePath(base, suffix string) string {
	base = strings.TrimRight(base, "/")
	if suffix == "" || strings.HasSuffix(base, suffix) {
		return base
	}
	return base + suffix
}
