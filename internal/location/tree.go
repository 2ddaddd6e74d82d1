// 包 location：行政层级树（区/子县/教区/村）、层级编码解析、解析器与基于编码前缀的过滤
package location

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Node：层级树节点；Level 由树中位置决定，而非编码结构
type Node struct {
	Code     string
	Name     string
	Level    Level
	Children []*Node

	parent  *Node
	nameKey string
}

// Ref：祖先引用
type Ref struct {
	Level Level  `json:"type"`
	Code  string `json:"code"`
	Name  string `json:"name"`
}

// Entity：解析结果，Ancestors 自根向下排列
type Entity struct {
	Level     Level  `json:"type"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Ancestors []Ref  `json:"ancestors,omitempty"`
}

// Tree：只读层级树快照
// 约束：构建完成后不再修改，可在多个请求间并发共享
type Tree struct {
	Districts []*Node
	byLevel   [LevelVillage + 1][]*Node
}

// NewTree：由区级节点构建快照，补齐层级、父指针与按层索引（层序）
func NewTree(districts []*Node) *Tree {
	t := &Tree{Districts: districts}
	queue := make([]*Node, 0, len(districts))
	for _, d := range districts {
		d.parent = nil
		d.Level = LevelDistrict
		queue = append(queue, d)
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		n.nameKey = nameKey(n.Name)
		t.byLevel[n.Level] = append(t.byLevel[n.Level], n)
		if n.Level == LevelVillage {
			continue
		}
		for _, c := range n.Children {
			c.parent = n
			c.Level = n.Level + 1
			queue = append(queue, c)
		}
	}
	return t
}

// Count：指定层级节点数量
func (t *Tree) Count(l Level) int {
	if l < LevelDistrict || l > LevelVillage {
		return 0
	}
	return len(t.byLevel[l])
}

// Resolve：按编码查找实体
// 约束：编码结构推断的层级必须与节点所在深度一致，否则视为未找到
func (t *Tree) Resolve(code string) (Entity, bool) {
	lvl, ok := ParseLevel(code)
	if !ok || t == nil {
		return Entity{}, false
	}
	for _, n := range t.byLevel[lvl] {
		if n.Code == code {
			return n.entity(), true
		}
	}
	return Entity{}, false
}

// FindByName：按名称查找实体（NFC 归一 + 大小写折叠，连续空白视为一个）
// within 非空时仅在该编码所指节点的子树内查找；同名时返回层序中的第一个
func (t *Tree) FindByName(l Level, name, within string) (Entity, bool) {
	if t == nil || l < LevelDistrict || l > LevelVillage {
		return Entity{}, false
	}
	key := nameKey(name)
	if key == "" {
		return Entity{}, false
	}
	for _, n := range t.byLevel[l] {
		if n.nameKey != key {
			continue
		}
		if within != "" && !n.hasAncestor(within) {
			continue
		}
		return n.entity(), true
	}
	return Entity{}, false
}

func (n *Node) hasAncestor(code string) bool {
	for p := n.parent; p != nil; p = p.parent {
		if p.Code == code {
			return true
		}
	}
	return false
}

func (n *Node) entity() Entity {
	e := Entity{Level: n.Level, Code: n.Code, Name: n.Name}
	var anc []Ref
	for p := n.parent; p != nil; p = p.parent {
		anc = append(anc, Ref{Level: p.Level, Code: p.Code, Name: p.Name})
	}
	for i, j := 0, len(anc)-1; i < j; i, j = i+1, j-1 {
		anc[i], anc[j] = anc[j], anc[i]
	}
	e.Ancestors = anc
	return e
}

// Ancestor：返回指定层级的祖先（含自身）
func (e Entity) Ancestor(l Level) (Ref, bool) {
	if e.Level == l {
		return Ref{Level: e.Level, Code: e.Code, Name: e.Name}, true
	}
	for _, a := range e.Ancestors {
		if a.Level == l {
			return a, true
		}
	}
	return Ref{}, false
}

func nameKey(s string) string {
	s = strings.Join(strings.Fields(norm.NFC.String(s)), " ")
	return cases.Fold().String(s)
}
