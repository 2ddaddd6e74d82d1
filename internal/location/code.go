package location

import (
	"fmt"
	"regexp"
	"strings"
)

// Level：行政层级（由编码结构唯一确定）
type Level int

const (
	LevelUnknown Level = iota
	LevelDistrict
	LevelSubcounty
	LevelParish
	LevelVillage
)

var levelNames = [...]string{"unknown", "district", "subcounty", "parish", "village"}

func (l Level) String() string {
	if l < LevelUnknown || l > LevelVillage {
		return "unknown"
	}
	return levelNames[l]
}

func (l Level) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

func (l *Level) UnmarshalText(b []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(b)))
	for i, n := range levelNames {
		if n == s {
			*l = Level(i)
			return nil
		}
	}
	return fmt.Errorf("unknown location level %q", s)
}

var (
	reDistrict  = regexp.MustCompile(`^D\d+$`)
	reSubcounty = regexp.MustCompile(`^D\d+S\d+$`)
	reParish    = regexp.MustCompile(`^D\d+S\d+P\d+$`)
	reVillage   = regexp.MustCompile(`^D\d+S\d+P\d+V\d+$`)
)

// ParseLevel：按编码结构推断层级
// 约束：大小写敏感；不符合任一结构时返回 false
func ParseLevel(code string) (Level, bool) {
	switch {
	case reVillage.MatchString(code):
		return LevelVillage, true
	case reParish.MatchString(code):
		return LevelParish, true
	case reSubcounty.MatchString(code):
		return LevelSubcounty, true
	case reDistrict.MatchString(code):
		return LevelDistrict, true
	}
	return LevelUnknown, false
}

// IsCode：判断文本是否为合法层级编码
func IsCode(s string) bool {
	_, ok := ParseLevel(s)
	return ok
}

var reDistrictPrefix = regexp.MustCompile(`^D\d+`)

// DistrictCode：取合法编码的区级前缀；非法编码返回空串
func DistrictCode(code string) string {
	if !IsCode(code) {
		return ""
	}
	return reDistrictPrefix.FindString(code)
}
