package document

import (
	"strconv"
	"strings"
	"time"

	"github.com/garyjia/caredoc/internal/domain/entity"
)

const (
	blankDateKOR = "    년   월   일"
	fullIDMask   = "****** - *******"
)

// FormatDateKOR renders YYYY-MM-DD as "YYYY년 M월 D일". An empty date gives
// the blank form; anything that is not three dash-separated parts is
// returned unchanged.
func FormatDateKOR(s string) string {
	if s == "" {
		return blankDateKOR
	}
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return s
	}
	return parts[0] + "년 " + trimLeadingZeros(parts[1]) + "월 " + trimLeadingZeros(parts[2]) + "일"
}

func trimLeadingZeros(s string) string {
	if n, err := strconv.Atoi(s); err == nil {
		return strconv.Itoa(n)
	}
	return s
}

// MaskIDNumber masks a resident registration number, keeping the first six
// digits and the gender digit.
func MaskIDNumber(id string) string {
	var digits strings.Builder
	for _, r := range id {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()

	switch {
	case len(d) >= 7:
		return d[:6] + "-" + d[6:7] + "******"
	case len(d) > 0:
		return d + " - *******"
	}
	return fullIDMask
}

// FormatMoney groups n by thousands: 1234567 -> "1,234,567"
func FormatMoney(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if n < 0 {
		neg = true
		s = s[1:]
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(s[:lead])
	for i := lead; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// slashDate renders YYYY-MM-DD as YYYY/MM/DD
func slashDate(s string) string {
	return strings.ReplaceAll(s, "-", "/")
}

// receiptNumber is the issue date without dashes plus a fixed sequence
func receiptNumber(issueDate string, now time.Time) string {
	if issueDate == "" {
		issueDate = entity.TodayKST(now)
	}
	return strings.ReplaceAll(issueDate, "-", "") + "-001"
}
