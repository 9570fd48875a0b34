package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ProgressBar renders progress in [0, 1] as a bar of length runes.
// Out-of-range values are clamped.
func ProgressBar(progress float64, length int) string {
	progress = min(max(progress, 0), 1)
	count := int(progress * float64(length))
	var builder strings.Builder
	builder.Grow(length * 3)
	for i := 0; i < length; i++ {
		if i < count {
			builder.WriteRune('█')
		} else {
			builder.WriteRune('░')
		}
	}
	return builder.String()
}

// FormatIterationProgress renders "[bar] done/total (pct%) ETA: eta", or
// "done" in place of the ETA once every iteration has completed.
func FormatIterationProgress(done, total int, eta time.Duration, width int) string {
	var progress float64
	if total > 0 {
		progress = float64(done) / float64(total)
	}
	tail := "ETA: " + FormatETA(eta)
	if total > 0 && done >= total {
		tail = "done"
	}
	return fmt.Sprintf("[%s] %s/%s (%5.1f%%) %s",
		ProgressBar(progress, width),
		FormatCount(done), FormatCount(total),
		progress*100, tail)
}

// FormatCount formats an integer with thousands separators.
func FormatCount(n int) string {
	return FormatNumberString(strconv.Itoa(n))
}

// FormatNumberString inserts thousands separators into a decimal integer
// string.
func FormatNumberString(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}
	var b strings.Builder
	b.Grow(len(s) + len(s)/3 + 1)
	b.WriteString(sign)
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > len(sign) {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatCoefficient renders an estimate with fixed precision, NaN as "NaN".
func FormatCoefficient(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
