package mcp

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// groupDigits inserts thousands separators into a decimal string.
func groupDigits(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}
	var b strings.Builder
	b.WriteString(sign)
	head := len(s) % 3
	if head == 0 {
		head = 3
	}
	b.WriteString(s[:head])
	for i := head; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// formatGas renders a gas amount, e.g. "1,034,567".
func formatGas(gas uint64) string {
	return groupDigits(strconv.FormatUint(gas, 10))
}

func formatCount(n int) string {
	return groupDigits(strconv.Itoa(n))
}

// formatDuration renders a millisecond count the way time.Duration prints,
// rounded to the millisecond.
func formatDuration(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).String()
}

// passRate is the share of passed checks among those that ran.
func passRate(passed, failed int) string {
	if passed+failed == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", float64(passed)*100/float64(passed+failed))
}

// kv aligns values behind a 20 character key column.
func kv(key string, value any) string {
	return fmt.Sprintf("%-20s %v", key+":", value)
}

func section(title string) string {
	return "## " + title
}

// joinLines drops empty lines.
func joinLines(lines ...string) string {
	kept := lines[:0:0]
	for _, l := range lines {
		if l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}
