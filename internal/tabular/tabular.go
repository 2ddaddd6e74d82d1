// 包 tabular：宽容的逗号分隔文本解析器，首行为表头，输出按表头键控的记录序列
package tabular

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Record：一行数据（表头字段 → 去空白后的原始字符串）
// 约束：解析后不再修改；数值与布尔语义由上层解释
type Record map[string]string

// Get：读取字段，缺失时返回空串
func (r Record) Get(key string) string { return r[key] }

// WarningKind：行级告警类别
type WarningKind string

const (
	WarnShortRow      WarningKind = "short_row"
	WarnLongRow       WarningKind = "long_row"
	WarnMalformed     WarningKind = "malformed"
	WarnDuplicateHead WarningKind = "duplicate_header"
)

// Warning：结构化告警，行号从 1 起（含表头行）
type Warning struct {
	Line   int         `json:"line"`
	Kind   WarningKind `json:"kind"`
	Detail string      `json:"detail"`
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s: %s", w.Line, w.Kind, w.Detail)
}

// Table：解析结果
type Table struct {
	Header   []string
	Records  []Record
	Warnings []Warning
}

// Parse：解析整段文本
func Parse(text string) (*Table, error) {
	return ParseReader(strings.NewReader(text))
}

// MaxQuotedLines：引号字段最多跨越的物理行数（含起始行）
const MaxQuotedLines = 8

// ParseReader：从 Reader 解析
// 约束：
//   - 空行与仅含空白的行被跳过，不产生记录
//   - 双引号包裹的字段内逗号不分隔，"" 表示字面引号；引号字段可跨行，但最多 MaxQuotedLines 行
//   - 引号在上限内未闭合、或严格解析失败的行按单行宽容切分保留，记 malformed 告警，后续行照常解析
//   - 字段少于表头时补空串；多于表头时截断；两者均记告警但保留该行
//   - 仅底层读取失败（非格式问题）时返回 error
func ParseReader(rd io.Reader) (*Table, error) {
	lines, err := readLines(rd)
	if err != nil {
		return nil, err
	}
	t := &Table{}
	for i := 0; i < len(lines); {
		if strings.TrimSpace(lines[i]) == "" {
			i++
			continue
		}
		line := i + 1
		fields, next, detail := splitRecord(lines, i)
		if detail != "" {
			t.Warnings = append(t.Warnings, Warning{Line: line, Kind: WarnMalformed, Detail: detail})
		}
		i = next
		if t.Header == nil {
			t.setHeader(fields, line)
			continue
		}
		t.Records = append(t.Records, t.toRecord(fields, line))
	}
	return t, nil
}

// readLines：按物理行读取；去掉行尾 \r 与首行 BOM
func readLines(rd io.Reader) ([]string, error) {
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 1024), 1024*1024)
	var lines []string
	for sc.Scan() {
		l := sc.Text()
		if len(lines) == 0 {
			l = strings.TrimPrefix(l, "\ufeff")
		}
		lines = append(lines, l)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// splitRecord：从第 i 行起切出一条逻辑记录，返回字段、下一条记录的行下标与告警详情
// 约束：引号奇偶决定是否续行；失败时仅消费第 i 行
func splitRecord(lines []string, i int) ([]string, int, string) {
	text := lines[i]
	open := strings.Count(text, `"`)%2 == 1
	j := i + 1
	for open {
		if j >= len(lines) || j-i >= MaxQuotedLines {
			return splitLine(lines[i]), i + 1, "unterminated quoted field"
		}
		text += "\n" + lines[j]
		open = open != (strings.Count(lines[j], `"`)%2 == 1)
		j++
	}
	cr := csv.NewReader(strings.NewReader(text))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	fields, err := cr.Read()
	if err != nil {
		detail := err.Error()
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			detail = pe.Err.Error()
		}
		return splitLine(lines[i]), i + 1, detail
	}
	return fields, j, ""
}

// splitLine：单行宽容切分
// 引号未闭合时该字段取到行尾；闭合引号与下一个逗号之间的字符按字面追加
func splitLine(line string) []string {
	var fields []string
	var b strings.Builder
	i := 0
	for {
		for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
		b.Reset()
		if i < len(line) && line[i] == '"' {
			i++
			for i < len(line) {
				if line[i] == '"' {
					if i+1 < len(line) && line[i+1] == '"' {
						b.WriteByte('"')
						i += 2
						continue
					}
					i++
					break
				}
				b.WriteByte(line[i])
				i++
			}
		}
		for i < len(line) && line[i] != ',' {
			b.WriteByte(line[i])
			i++
		}
		fields = append(fields, b.String())
		if i >= len(line) {
			return fields
		}
		i++
	}
}

func (t *Table) setHeader(fields []string, line int) {
	seen := make(map[string]bool, len(fields))
	t.Header = make([]string, len(fields))
	for i, f := range fields {
		h := strings.TrimSpace(f)
		if h != "" && seen[h] {
			t.Warnings = append(t.Warnings, Warning{Line: line, Kind: WarnDuplicateHead, Detail: h})
		}
		seen[h] = true
		t.Header[i] = h
	}
}

func (t *Table) toRecord(fields []string, line int) Record {
	n := len(t.Header)
	switch {
	case len(fields) < n:
		t.Warnings = append(t.Warnings, Warning{Line: line, Kind: WarnShortRow, Detail: fmt.Sprintf("got %d fields, want %d", len(fields), n)})
	case len(fields) > n:
		t.Warnings = append(t.Warnings, Warning{Line: line, Kind: WarnLongRow, Detail: fmt.Sprintf("got %d fields, want %d", len(fields), n)})
	}
	rec := make(Record, n)
	for i, h := range t.Header {
		if _, dup := rec[h]; dup {
			continue
		}
		v := ""
		if i < len(fields) {
			v = strings.TrimSpace(fields[i])
		}
		rec[h] = v
	}
	return rec
}
