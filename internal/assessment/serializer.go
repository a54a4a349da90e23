package assessment

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

const (
	TableRowKey   = "kegiatan"
	TableValueKey = "value"
)

// AnswerRecord 提交载荷中的一条答案
type AnswerRecord struct {
	QuestionID int     `json:"question_id"`
	Answer     any     `json:"answer"`
	Note       *string `json:"note,omitempty"`
}

// Payload answers 之外的会话级字段平铺在同一层
type Payload struct {
	Answers []AnswerRecord
	Context map[string]any
}

func (p Payload) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Context)+1)
	for k, v := range p.Context {
		out[k] = v
	}
	answers := p.Answers
	if answers == nil {
		answers = []AnswerRecord{}
	}
	out["answers"] = answers
	return json.Marshal(out)
}

func (p *Payload) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if a, ok := raw["answers"]; ok {
		if err := json.Unmarshal(a, &p.Answers); err != nil {
			return err
		}
		delete(raw, "answers")
	}
	if len(raw) > 0 {
		p.Context = make(map[string]any, len(raw))
		for k, v := range raw {
			var val any
			if err := json.Unmarshal(v, &val); err != nil {
				return err
			}
			p.Context[k] = val
		}
	}
	return nil
}

// SerializeInput 序列化策略可读取的会话状态
type SerializeInput struct {
	Schema    *Schema
	Store     *Store
	Evaluator *Evaluator
}

// Policy 每个提交类型各自的序列化规则
type Policy interface {
	Serialize(in SerializeInput) []AnswerRecord
}

// Serialize 生成提交载荷。没有 assessment id 时什么都不发送
func Serialize(p Profile, in SerializeInput, assessmentID string, context map[string]string) (Payload, error) {
	if p.ReadOnly || p.Policy == nil {
		return Payload{}, ErrReadOnlyCategory
	}
	if strings.TrimSpace(assessmentID) == "" {
		return Payload{}, ErrMissingAssessmentID
	}

	payload := Payload{Answers: p.Policy.Serialize(in)}
	if len(p.ContextFields) > 0 {
		payload.Context = make(map[string]any, len(p.ContextFields))
		for _, f := range p.ContextFields {
			if v := context[f]; v != "" {
				payload.Context[f] = v
			} else {
				payload.Context[f] = nil
			}
		}
	}
	return payload, nil
}

func valueOf(v any) map[string]any { return map[string]any{"value": v} }

// generalPolicy 数据总览：题库中每道题都占一条，按 id 升序；未作答或空标量发送 null，复合值按原形状发送
type generalPolicy struct{}

func (generalPolicy) Serialize(in SerializeInput) []AnswerRecord {
	ids := generalIDs(in)
	out := make([]AnswerRecord, 0, len(ids))
	for _, id := range ids {
		v, _ := in.Store.Get(id)
		var answer any
		switch x := v.(type) {
		case nil:
			answer = valueOf(nil)
		case Choice, Table:
			answer = x.Wire()
		case Text:
			if x.IsEmpty() {
				answer = valueOf(nil)
			} else {
				answer = valueOf(x.Wire())
			}
		default:
			answer = valueOf(x.Wire())
		}
		out = append(out, AnswerRecord{QuestionID: id, Answer: answer})
	}
	return out
}

// generalIDs 题库题目与 store 槽位的并集
func generalIDs(in SerializeInput) []int {
	seen := make(map[int]struct{})
	if in.Schema != nil {
		for _, q := range in.Schema.Questions() {
			seen[q.ID] = struct{}{}
		}
	}
	for _, id := range in.Store.IDs() {
		seen[id] = struct{}{}
	}
	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// okupasiPolicy 跳过未作答；slider 转成数字
type okupasiPolicy struct{}

func (okupasiPolicy) Serialize(in SerializeInput) []AnswerRecord {
	var out []AnswerRecord
	for _, q := range in.Schema.Questions() {
		v, ok := in.Store.Get(q.ID)
		if !ok || v == nil || v.IsEmpty() {
			continue
		}
		wire := v.Wire()
		if q.Type.Canonical() == TypeSlider {
			if n, ok := sliderNumber(v); ok {
				wire = n
			} else {
				continue
			}
		}
		out = append(out, AnswerRecord{QuestionID: q.ID, Answer: valueOf(wire)})
	}
	return out
}

func sliderNumber(v Value) (int, bool) {
	switch x := v.(type) {
	case Level:
		return int(x), true
	case Text:
		n, err := strconv.Atoi(strings.TrimSpace(string(x)))
		return n, err == nil
	}
	return 0, false
}

// wicaraPolicy 只发送可见题目；表格按声明的行展开
type wicaraPolicy struct{}

func (wicaraPolicy) Serialize(in SerializeInput) []AnswerRecord {
	var out []AnswerRecord
	for _, q := range in.Schema.Questions() {
		if in.Evaluator != nil && !in.Evaluator.Visible(q, in.Store) {
			continue
		}
		v, _ := in.Store.Get(q.ID)

		switch q.Type.Canonical() {
		case TypeTable:
			t, _ := v.(Table)
			out = append(out, AnswerRecord{QuestionID: q.ID, Answer: valueOf(tableRows(q, t))})
		case TypeRadio, TypeRadioWithText:
			var answer any
			if v != nil {
				if p, ok := v.Primary(); ok {
					answer = p
				} else if _, isChoice := v.(Choice); !isChoice {
					answer = v.Wire()
				}
			}
			out = append(out, AnswerRecord{QuestionID: q.ID, Answer: valueOf(answer)})
		case TypeYesOnly:
			if v == nil || v.IsEmpty() {
				continue
			}
			out = append(out, AnswerRecord{QuestionID: q.ID, Answer: valueOf(v.Wire())})
		default:
			var answer any
			if v != nil {
				answer = v.Wire()
			}
			out = append(out, AnswerRecord{QuestionID: q.ID, Answer: valueOf(answer)})
		}
	}
	return out
}

// tableRows 每个声明的行一条记录，未填写的单元格为 null
func tableRows(q Question, t Table) []map[string]any {
	rows := make([]map[string]any, 0, len(q.Extra.Rows))
	for _, row := range q.Extra.Rows {
		rec := map[string]any{TableRowKey: row}
		if len(q.Extra.Columns) > 0 {
			for _, col := range q.Extra.Columns {
				if cell, ok := t.GridCell(row, col); ok {
					rec[col] = cell
				} else {
					rec[col] = nil
				}
			}
		} else if cell, ok := t.Cell(row); ok {
			rec[TableValueKey] = cell
		} else {
			rec[TableValueKey] = nil
		}
		rows = append(rows, rec)
	}
	return rows
}

// paedagogPolicy 按分组顺序、组内 id 升序，只发送非空答案
type paedagogPolicy struct{}

func (paedagogPolicy) Serialize(in SerializeInput) []AnswerRecord {
	var out []AnswerRecord
	for _, g := range in.Schema.Groups {
		ids := make([]int, 0, len(g.Questions))
		for _, q := range g.Questions {
			ids = append(ids, q.ID)
		}
		sort.Ints(ids)
		for _, id := range ids {
			v, ok := in.Store.Get(id)
			if !ok || v == nil || v.IsEmpty() {
				continue
			}
			out = append(out, AnswerRecord{QuestionID: id, Answer: valueOf(v.Wire())})
		}
	}
	return out
}

// fisioPolicy 全部题目原样发送
type fisioPolicy struct{}

func (fisioPolicy) Serialize(in SerializeInput) []AnswerRecord {
	questions := in.Schema.Questions()
	out := make([]AnswerRecord, 0, len(questions))
	for _, q := range questions {
		var answer any
		if v, ok := in.Store.Get(q.ID); ok && v != nil {
			answer = v.Wire()
		}
		out = append(out, AnswerRecord{QuestionID: q.ID, Answer: valueOf(answer)})
	}
	return out
}

// therapistPolicy 治疗师评估：有答案或有备注才发送；yes_only 勾选时发送 true
type therapistPolicy struct{}

func (therapistPolicy) Serialize(in SerializeInput) []AnswerRecord {
	var out []AnswerRecord
	for _, q := range in.Schema.Questions() {
		v, _ := in.Store.Get(q.ID)

		switch q.Type.Canonical() {
		case TypeYesOnly:
			if v == nil || v.IsEmpty() {
				continue
			}
			out = append(out, AnswerRecord{QuestionID: q.ID, Answer: valueOf(true)})
		case TypeCheckbox, TypeMulti, TypeTable, TypeSlider:
			if v == nil || v.IsEmpty() {
				continue
			}
			out = append(out, AnswerRecord{QuestionID: q.ID, Answer: valueOf(v.Wire())})
		default:
			var value, note string
			switch x := v.(type) {
			case Choice:
				value, note = x.Value, strings.TrimSpace(x.Note)
			case Text:
				value = string(x)
			}
			if value == "" && note == "" {
				continue
			}
			var answer any
			if value != "" {
				answer = value
			}
			n := note
			out = append(out, AnswerRecord{QuestionID: q.ID, Answer: valueOf(answer), Note: &n})
		}
	}
	return out
}
