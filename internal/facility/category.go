package facility

import (
	"errors"
	"fmt"
	"strings"
)

// Category：设施类别（封闭枚举）
type Category int

const (
	Health Category = iota + 1
	Education
)

// ErrUnknownCategory：类别既非 health 也非 education
var ErrUnknownCategory = errors.New("unknown facility category")

// Categories：全部类别，顺序稳定
func Categories() []Category { return []Category{Health, Education} }

func (c Category) String() string {
	switch c {
	case Health:
		return "health"
	case Education:
		return "education"
	}
	return "unknown"
}

// Valid：是否为已知类别
func (c Category) Valid() bool { return c == Health || c == Education }

// ParseCategory：大小写不敏感解析类别
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "health":
		return Health, nil
	case "education":
		return Education, nil
	}
	return 0, fmt.Errorf("%q: %w", s, ErrUnknownCategory)
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, ErrUnknownCategory
	}
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	v, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
