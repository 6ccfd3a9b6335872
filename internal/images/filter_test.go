// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package images_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/vizion/internal/images"
)

func named(names ...string) []images.Image {
	list := make([]images.Image, 0, len(names))
	for i, name := range names {
		list = append(list, images.Image{ID: string(rune('a' + i)), OriginalName: name})
	}
	return list
}

func names(list []images.Image) []string {
	out := make([]string, 0, len(list))
	for _, img := range list {
		out = append(out, img.OriginalName)
	}
	return out
}

/*
TestFilter verifies the filtered view: blank queries return everything,
others keep exactly the case-insensitive substring matches, in order.
*/
func TestFilter(t *testing.T) {
	collection := named("Beach.PNG", "mountain.jpg", "beach-night.gif", "Été.png")

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty", "", names(collection)},
		{"blank", "   \t", names(collection)},
		{"lower", "beach", []string{"Beach.PNG", "beach-night.gif"}},
		{"upper", "BEACH", []string{"Beach.PNG", "beach-night.gif"}},
		{"trimmed", "  png ", []string{"Beach.PNG", "Été.png"}},
		{"accented", "ÉTÉ", []string{"Été.png"}},
		{"no match", "desert", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(images.Filter(collection, tt.query)))
		})
	}
}

/*
TestFilter_Laws checks the filtered view equals the in-order subsequence
picked by a brute-force definition, for every query built from the
collection's own names.
*/
func TestFilter_Laws(t *testing.T) {
	collection := named("alpha.png", "Alphabet.jpg", "beta.gif", "GAMMA.png", "")

	for _, img := range collection {
		for start := 0; start < len(img.OriginalName); start++ {
			for end := start + 1; end <= len(img.OriginalName); end++ {
				query := img.OriginalName[start:end]
				if strings.TrimSpace(query) == "" {
					continue
				}

				got := images.Filter(collection, query)

				var want []images.Image
				for _, candidate := range collection {
					if strings.Contains(strings.ToLower(candidate.OriginalName), strings.ToLower(strings.TrimSpace(query))) {
						want = append(want, candidate)
					}
				}
				assert.Equal(t, want, got, "query %q", query)
				assert.Contains(t, got, img, "query %q", query)
			}
		}
	}

	assert.Equal(t, collection, images.Filter(collection, ""))
}

/*
TestFormatSize verifies the base-1024 size rendering.
*/
func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 Bytes"},
		{1, "1 Bytes"},
		{1023, "1023 Bytes"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1100, "1.07 KB"},
		{10 << 20, "10 MB"},
		{3 << 30, "3 GB"},
		{5 << 40, "5120 GB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, images.FormatSize(tt.bytes), "bytes=%d", tt.bytes)
	}
}

/*
TestFormatDate verifies the long date rendering.
*/
func TestFormatDate(t *testing.T) {
	assert.Equal(t, "March 5, 2026", images.FormatDate(time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "March 5, 2026", images.FormatCreated("2026-03-05T10:00:00Z"))
	assert.Equal(t, "...", images.FormatCreated("..."))
}
