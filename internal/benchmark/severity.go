package benchmark

import "fmt"

// Severity：差距严重度
type Severity int

const (
	Low Severity = iota
	Medium
	High
	Critical
)

func (s Severity) String() string {
	switch s {
	case Critical:
		return "critical"
	case High:
		return "high"
	case Medium:
		return "medium"
	}
	return "low"
}

func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Severity) UnmarshalText(b []byte) error {
	for _, v := range []Severity{Low, Medium, High, Critical} {
		if v.String() == string(b) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("unknown severity %q", b)
}

// Attainment：达成比例，恒为“越小越差”
// 约束：更高更优取 current/target，更低更优取 target/current；分母为 0 时按未达成处理返回 0
func Attainment(current, target float64, d Direction) float64 {
	num, den := current, target
	if d == LowerIsBetter {
		num, den = target, current
	}
	if den <= 0 {
		return 0
	}
	return num / den
}

// Classify：按达成比例分级，各阈值均为严格小于
// < 0.5 critical；< 0.75 high；< 0.9 medium；其余 low
func Classify(ratio float64) Severity {
	switch {
	case ratio < 0.5:
		return Critical
	case ratio < 0.75:
		return High
	case ratio < 0.9:
		return Medium
	}
	return Low
}

// Gap：相对基准的不足
type Gap struct {
	Type      string    `json:"type"`
	Current   float64   `json:"current"`
	Target    float64   `json:"target"`
	Severity  Severity  `json:"severity"`
	Direction Direction `json:"direction"`
}

// Check：当前值未达到基准时返回 Gap
func (b Benchmark) Check(metric string, current float64) (Gap, bool) {
	if b.Meets(current) {
		return Gap{}, false
	}
	return Gap{
		Type:      metric,
		Current:   current,
		Target:    b.Value,
		Severity:  Classify(Attainment(current, b.Value, b.Direction)),
		Direction: b.Direction,
	}, true
}
