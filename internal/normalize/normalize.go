// Package normalize holds the canonical-form transforms shared by the import
// pipeline and the book lookup handlers.
package normalize

import (
	"math"
	"strings"
)

// Rating clamps v into [1, 5] and rounds to the nearest half star.
func Rating(v float64) float64 {
	clamped := math.Max(1, math.Min(5, v))
	return math.Round(clamped*2) / 2
}

// ISBN strips hyphens and spaces and returns a 13-digit ISBN, converting
// 10-digit input via the 978 prefix and a recomputed check digit. Any other
// shape yields "".
func ISBN(s string) string {
	digits := strings.NewReplacer("-", "", " ", "").Replace(s)

	switch len(digits) {
	case 13:
		if !allDigits(digits) {
			return ""
		}
		return digits
	case 10:
		// Last position of an ISBN-10 may be 'X'; it is discarded anyway
		// since only the first 9 digits carry into the ISBN-13 form.
		if !allDigits(digits[:9]) {
			return ""
		}
		isbn12 := "978" + digits[:9]
		sum := 0
		for i := 0; i < 12; i++ {
			d := int(isbn12[i] - '0')
			if i%2 == 0 {
				sum += d
			} else {
				sum += d * 3
			}
		}
		check := (10 - sum%10) % 10
		return isbn12 + string(rune('0'+check))
	default:
		return ""
	}
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
