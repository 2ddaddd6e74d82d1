package location

import (
	"errors"
	"fmt"
	"strings"

	"facility-api/internal/tabular"
)

// CodeField：记录中承载层级编码的字段名
const CodeField = "location_code"

// ErrLocationNotFound：名称无法解析为层级编码
var ErrLocationNotFound = errors.New("location not found")

// Filter：按编码表达的位置范围（仅接受编码，名称需先经 ResolveNames 转换）
type Filter struct {
	District  string `json:"district,omitempty"`
	Subcounty string `json:"subcounty,omitempty"`
	Parish    string `json:"parish,omitempty"`
	Village   string `json:"village,omitempty"`
}

// NameFilter：按可读名称表达的位置范围
type NameFilter struct {
	District  string
	Subcounty string
	Parish    string
	Village   string
}

// IsZero：是否未设置任何层级
func (f Filter) IsZero() bool {
	_, code := f.Scope()
	return code == ""
}

// Scope：取最具体的非空层级（村 > 教区 > 子县 > 区）
func (f Filter) Scope() (Level, string) {
	switch {
	case strings.TrimSpace(f.Village) != "":
		return LevelVillage, strings.TrimSpace(f.Village)
	case strings.TrimSpace(f.Parish) != "":
		return LevelParish, strings.TrimSpace(f.Parish)
	case strings.TrimSpace(f.Subcounty) != "":
		return LevelSubcounty, strings.TrimSpace(f.Subcounty)
	case strings.TrimSpace(f.District) != "":
		return LevelDistrict, strings.TrimSpace(f.District)
	}
	return LevelUnknown, ""
}

// Match：编码是否落在范围内
// 约束：字面前缀比较，大小写敏感，不做归一化；空范围匹配一切
func (f Filter) Match(code string) bool {
	_, scope := f.Scope()
	if scope == "" {
		return true
	}
	return strings.HasPrefix(code, scope)
}

// FilterRecords：按 location_code 过滤原始记录；空范围原样返回
func FilterRecords(recs []tabular.Record, f Filter) []tabular.Record {
	if f.IsZero() {
		return recs
	}
	out := make([]tabular.Record, 0, len(recs))
	for _, r := range recs {
		if f.Match(r.Get(CodeField)) {
			out = append(out, r)
		}
	}
	return out
}

// IsZero：是否未设置任何名称
func (nf NameFilter) IsZero() bool {
	return strings.TrimSpace(nf.District+nf.Subcounty+nf.Parish+nf.Village) == ""
}

// ResolveNames：将名称范围逐级解析为编码范围
// 约束：上级已解析时下级仅在其子树内查找；任一非空名称未命中返回 ErrLocationNotFound
func (t *Tree) ResolveNames(nf NameFilter) (Filter, error) {
	return t.resolve(Filter{}, nf)
}

// ResolveInput：外部输入（每个字段可为编码或名称）转换为编码范围
// 约束：符合编码结构的字段原样采用且不校验是否存在于树中；其余按名称在当前范围内解析
func (t *Tree) ResolveInput(in NameFilter) (Filter, error) {
	var codes Filter
	var names NameFilter
	split := func(v string, code, name *string) {
		v = strings.TrimSpace(v)
		if IsCode(v) {
			*code = v
		} else {
			*name = v
		}
	}
	split(in.District, &codes.District, &names.District)
	split(in.Subcounty, &codes.Subcounty, &names.Subcounty)
	split(in.Parish, &codes.Parish, &names.Parish)
	split(in.Village, &codes.Village, &names.Village)
	if names.IsZero() {
		return codes, nil
	}
	return t.resolve(codes, names)
}

func (t *Tree) resolve(f Filter, nf NameFilter) (Filter, error) {
	if t == nil {
		return Filter{}, fmt.Errorf("no location tree loaded: %w", ErrLocationNotFound)
	}
	within := ""
	steps := []struct {
		level Level
		code  *string
		name  string
	}{
		{LevelDistrict, &f.District, nf.District},
		{LevelSubcounty, &f.Subcounty, nf.Subcounty},
		{LevelParish, &f.Parish, nf.Parish},
		{LevelVillage, &f.Village, nf.Village},
	}
	for _, s := range steps {
		if *s.code != "" {
			within = *s.code
			continue
		}
		name := strings.TrimSpace(s.name)
		if name == "" {
			continue
		}
		e, ok := t.FindByName(s.level, name, within)
		if !ok {
			return Filter{}, fmt.Errorf("%s %q: %w", s.level, name, ErrLocationNotFound)
		}
		*s.code = e.Code
		within = e.Code
	}
	return f, nil
}
