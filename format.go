package allocbench

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// FormatTime labels a duration given in nanoseconds with the largest unit
// whose decimal magnitude it reaches.
func FormatTime(ns float64) string {
	switch {
	case ns == 0:
		return "0"
	case ns < 0:
		return "-" + FormatTime(-ns)
	case ns < 1:
		return fmt.Sprintf("%.0f", ns)
	case ns < 1e3:
		return fmt.Sprintf("%.0f ns", ns)
	case ns < 1e6:
		return fmt.Sprintf("%.0f µs", ns/1e3)
	case ns < 1e9:
		return fmt.Sprintf("%.0f ms", ns/1e6)
	default:
		return fmt.Sprintf("%.0f s", ns/1e9)
	}
}

// FormatBytes labels a byte count. The unit switches at powers of ten but
// divides by powers of 1024, so 1000 reads "0 ko".
func FormatBytes(b float64) string {
	switch {
	case b == 0:
		return "0 o"
	case b < 0:
		return "-" + FormatBytes(-b)
	case b < 1e3:
		return strconv.FormatFloat(b, 'f', -1, 64) + " o"
	case b < 1e6:
		return fmt.Sprintf("%.0f ko", math.Floor(b/(1<<10)))
	case b < 1e9:
		return fmt.Sprintf("%.0f Mo", math.Floor(b/(1<<20)))
	default:
		return fmt.Sprintf("%.0f Go", math.Floor(b/(1<<30)))
	}
}

// ProgramTitle turns a snake_case program name into a chart title:
// "zeroed_matrix_10x100000" becomes "Zeroed Matrix 10x100000", the "0X1"
// produced by title casing being turned back into "0x1".
func ProgramTitle(name string) string {
	var sb strings.Builder
	prevLetter := false
	for _, r := range strings.ReplaceAll(name, "_", " ") {
		if unicode.IsLetter(r) {
			if prevLetter {
				r = unicode.ToLower(r)
			} else {
				r = unicode.ToUpper(r)
			}
			prevLetter = true
		} else {
			prevLetter = false
		}
		sb.WriteRune(r)
	}
	return strings.ReplaceAll(sb.String(), "0X1", "0x1")
}
