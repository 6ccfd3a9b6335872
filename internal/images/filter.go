// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package images

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/taibuivan/vizion/pkg/slice"
)

// # Filtered View

// Filter returns the images whose OriginalName contains the trimmed query,
// ignoring case. An empty or blank query returns the collection itself.
//
// The result is a projection: it is recomputed on every call and never
// stored.
func Filter(collection []Image, query string) []Image {
	needle := normalize(query)
	if needle == "" {
		return collection
	}

	return slice.Filter(collection, func(img Image) bool {
		return strings.Contains(fold(img.OriginalName), needle)
	})
}

func normalize(query string) string {
	return fold(strings.TrimSpace(query))
}

// fold applies Unicode case folding. A [cases.Caser] is stateful, so each
// call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}
