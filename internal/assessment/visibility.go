package assessment

import (
	"strconv"
	"strings"
)

// AnswerReader 可见性判断只需要读取答案
type AnswerReader interface {
	Get(id int) (Value, bool)
}

type Evaluator struct {
	schema *Schema
}

func NewEvaluator(schema *Schema) *Evaluator {
	return &Evaluator{schema: schema}
}

// Resolve 把规则里的 when 解析成题目 id，依次尝试：
// 精确 id、题目自身的 question_id、显示题号、题目编码子串。找不到返回 false
func (e *Evaluator) Resolve(when string, answers AnswerReader) (int, bool) {
	when = strings.TrimSpace(when)
	if when == "" {
		return 0, false
	}

	if id, err := strconv.Atoi(when); err == nil {
		if _, ok := answers.Get(id); ok {
			return id, true
		}
		if _, ok := e.schema.Question(id); ok {
			return id, true
		}
	}

	questions := e.schema.Questions()
	for _, q := range questions {
		if q.AltID != "" && q.AltID == when {
			return q.ID, true
		}
	}
	for _, q := range questions {
		if q.Number != "" && q.Number == when {
			return q.ID, true
		}
	}
	for _, q := range questions {
		if q.Code != "" && strings.Contains(q.Code, when) {
			return q.ID, true
		}
	}
	return 0, false
}

// Visible 所有规则都满足才显示；没有规则即显示。
// operator 不参与判断，一律按字符串相等比较
func (e *Evaluator) Visible(q Question, answers AnswerReader) bool {
	for _, rule := range q.Extra.Rules {
		if !e.check(rule, answers) {
			return false
		}
	}
	return true
}

func (e *Evaluator) check(rule Rule, answers AnswerReader) bool {
	id, ok := e.Resolve(rule.When, answers)
	if !ok {
		return false
	}
	v, ok := answers.Get(id)
	if !ok || v == nil {
		return false
	}
	primary, ok := v.Primary()
	if !ok {
		return false
	}
	return primary == rule.Value
}

// Filter 保持原顺序，只留下可见题目
func (e *Evaluator) Filter(questions []Question, answers AnswerReader) []Question {
	out := make([]Question, 0, len(questions))
	for _, q := range questions {
		if e.Visible(q, answers) {
			out = append(out, q)
		}
	}
	return out
}
