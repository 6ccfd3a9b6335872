// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package images

import (
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// # Display Formatting

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// DateLayout is the layout used by [FormatDate].
const DateLayout = "January 2, 2006"

// FormatSize renders a byte count in base 1024 with at most two decimals:
// 0 -> "0 Bytes", 1536 -> "1.5 KB", 10485760 -> "10 MB".
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}

	exponent := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	exponent = min(exponent, len(sizeUnits)-1)

	value := float64(bytes) / math.Pow(1024, float64(exponent))
	value = math.Round(value*100) / 100

	// FtoaWithDigits trims trailing zeros.
	return humanize.FtoaWithDigits(value, 2) + " " + sizeUnits[exponent]
}

// FormatDate renders t as e.g. "March 5, 2026".
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatCreated renders an RFC 3339 timestamp with [FormatDate], or returns
// it unchanged when it does not parse.
func FormatCreated(createdAt string) string {
	parsed, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return createdAt
	}
	return FormatDate(parsed)
}
