package location

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"facility-api/internal/logger"

	"gopkg.in/yaml.v3"
)

// Format：层级文档格式
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// ErrEmptyTree：文档中不含任何区级节点
var ErrEmptyTree = errors.New("location: document has no districts")

// docNode：层级文档节点；子节点可按层级命名或统一用 children
type docNode struct {
	Code        string    `json:"code" yaml:"code"`
	Name        string    `json:"name" yaml:"name"`
	Subcounties []docNode `json:"subcounties" yaml:"subcounties"`
	Parishes    []docNode `json:"parishes" yaml:"parishes"`
	Villages    []docNode `json:"villages" yaml:"villages"`
	Children    []docNode `json:"children" yaml:"children"`
}

type document struct {
	Districts []docNode `json:"districts" yaml:"districts"`
	docNode   `yaml:",inline"`
}

// FormatFromPath：按扩展名判断格式，.yaml/.yml 为 YAML，其余按 JSON 处理
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// LoadFile：读取并解析层级文档
func LoadFile(path string) (*Tree, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := Decode(b, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("location: %s: %w", path, err)
	}
	logger.L().Debug("location_tree_loaded", "path", path,
		"districts", t.Count(LevelDistrict), "subcounties", t.Count(LevelSubcounty),
		"parishes", t.Count(LevelParish), "villages", t.Count(LevelVillage))
	return t, nil
}

// LoadReader：从 Reader 解析层级文档
func LoadReader(r io.Reader, f Format) (*Tree, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(b, f)
}

// Decode：解析层级文档
// 约束：顶层可为 {districts:[...]} 或单个区对象；子节点编码不以父编码为前缀时仅记日志，不拒绝
func Decode(b []byte, f Format) (*Tree, error) {
	var doc document
	var err error
	switch f {
	case FormatYAML:
		err = yaml.Unmarshal(b, &doc)
	default:
		err = json.NewDecoder(bytes.NewReader(b)).Decode(&doc)
	}
	if err != nil {
		return nil, err
	}
	roots := doc.Districts
	if len(roots) == 0 && doc.Code != "" {
		roots = []docNode{doc.docNode}
	}
	if len(roots) == 0 {
		return nil, ErrEmptyTree
	}
	districts := make([]*Node, 0, len(roots))
	for _, d := range roots {
		districts = append(districts, buildNode(d, LevelDistrict, ""))
	}
	return NewTree(districts), nil
}

func buildNode(d docNode, l Level, parentCode string) *Node {
	n := &Node{Code: strings.TrimSpace(d.Code), Name: strings.TrimSpace(d.Name), Level: l}
	if parentCode != "" && !strings.HasPrefix(n.Code, parentCode) {
		logger.L().Warn("location_code_not_prefixed", "code", n.Code, "parent", parentCode)
	}
	if l == LevelVillage {
		return n
	}
	for _, c := range d.childrenAt(l) {
		n.Children = append(n.Children, buildNode(c, l+1, n.Code))
	}
	return n
}

func (d docNode) childrenAt(l Level) []docNode {
	var named []docNode
	switch l {
	case LevelDistrict:
		named = d.Subcounties
	case LevelSubcounty:
		named = d.Parishes
	case LevelParish:
		named = d.Villages
	}
	if len(named) > 0 {
		return named
	}
	return d.Children
}
