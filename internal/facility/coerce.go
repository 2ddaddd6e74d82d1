package facility

import (
	"math"
	"strconv"
	"strings"
)

var affirmative = map[string]bool{"yes": true, "y": true, "true": true, "1": true}

// ParseLenientBool：宽松布尔解析
// 约束：去空白并小写后属于 {yes, y, true, 1} 为真；其他任何值（含空串）为假，从不报错
func ParseLenientBool(s string) bool {
	return affirmative[strings.ToLower(strings.TrimSpace(s))]
}

// ParseLenientNumber：宽松数值解析
// 约束：去除千分位逗号与空白后按浮点解析；空串、非数值、NaN、Inf 均返回 0，从不报错
func ParseLenientNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	s = strings.Map(func(r rune) rune {
		if r == ',' || r == ' ' || r == '\u00a0' {
			return -1
		}
		return r
	}, s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
