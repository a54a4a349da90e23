package assessment

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// AnswerType 题目的作答类型，决定答案形状与输入行为
type AnswerType string

const (
	TypeText          AnswerType = "text"
	TypeNumber        AnswerType = "number"
	TypeTextarea      AnswerType = "textarea"
	TypeSelect        AnswerType = "select"
	TypeRadio         AnswerType = "radio"
	TypeCheckbox      AnswerType = "checkbox"
	TypeRadioWithText AnswerType = "radio_with_text"
	TypeMulti         AnswerType = "multi"
	TypeTable         AnswerType = "table"
	TypeSlider        AnswerType = "slider"
	TypeYesOnly       AnswerType = "yes_only"

	// okupasi 题库里的三选一单选，等同 radio
	TypeRadio3 AnswerType = "radio3"
)

// Canonical 把别名类型归一
func (t AnswerType) Canonical() AnswerType {
	if t == TypeRadio3 {
		return TypeRadio
	}
	return t
}

const (
	SliderMin = 1
	SliderMax = 5
)

// Value 答案值（按 AnswerType 区分的和类型）
type Value interface {
	// IsEmpty 未作答时为 true
	IsEmpty() bool
	// Primary 用于条件比较的主值；表格/多行记录没有主值
	Primary() (string, bool)
	// Wire 序列化到接口时的形状
	Wire() any
}

// Text text/number/textarea/select/radio 的答案
type Text string

func (t Text) IsEmpty() bool { return t == "" }

func (t Text) Primary() (string, bool) { return string(t), t != "" }

func (t Text) Wire() any { return string(t) }

// Set checkbox 的答案，按勾选顺序保存，比较时只看成员关系
type Set []string

func (s Set) IsEmpty() bool { return len(s) == 0 }

func (s Set) Primary() (string, bool) {
	if len(s) == 0 {
		return "", false
	}
	return strings.Join(s, ","), true
}

func (s Set) Wire() any {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func (s Set) Has(member string) bool {
	for _, m := range s {
		if m == member {
			return true
		}
	}
	return false
}

// Toggle 返回切换 member 之后的新集合，原集合不变
func (s Set) Toggle(member string) Set {
	if s.Has(member) {
		out := make(Set, 0, len(s)-1)
		for _, m := range s {
			if m != member {
				out = append(out, m)
			}
		}
		return out
	}
	out := make(Set, len(s), len(s)+1)
	copy(out, s)
	return append(out, member)
}

// Record multi 类型中的一行
type Record map[string]string

// Records multi 的答案
type Records []Record

func (r Records) IsEmpty() bool { return len(r) == 0 }

func (r Records) Primary() (string, bool) { return "", false }

func (r Records) Wire() any {
	out := make([]map[string]string, len(r))
	for i, row := range r {
		out[i] = row.clone()
	}
	return out
}

func (r Record) clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func (r Records) clone() Records {
	out := make(Records, len(r))
	for i, row := range r {
		out[i] = row.clone()
	}
	return out
}

// Table table 的答案。Cells 是“行 → 文本”形式；声明了 columns 的表格写入 Grid（行 → 列 → 文本）
type Table struct {
	Cells map[string]string
	Grid  map[string]map[string]string
}

func (t Table) IsEmpty() bool { return len(t.Cells) == 0 && len(t.Grid) == 0 }

func (t Table) Primary() (string, bool) { return "", false }

func (t Table) Wire() any {
	out := make(map[string]any, len(t.Cells)+len(t.Grid))
	for row, v := range t.Cells {
		out[row] = v
	}
	for row, cols := range t.Grid {
		m := make(map[string]string, len(cols))
		for c, v := range cols {
			m[c] = v
		}
		out[row] = m
	}
	return out
}

// Cell 读取单元格，ok 表示该单元格写过
func (t Table) Cell(row string) (string, bool) {
	v, ok := t.Cells[row]
	return v, ok
}

func (t Table) GridCell(row, col string) (string, bool) {
	cols, ok := t.Grid[row]
	if !ok {
		return "", false
	}
	v, ok := cols[col]
	return v, ok
}

// WithCell 返回合并了一个单元格的新表
func (t Table) WithCell(row, value string) Table {
	out := t.clone()
	if out.Cells == nil {
		out.Cells = make(map[string]string)
	}
	out.Cells[row] = value
	return out
}

func (t Table) WithGridCell(row, col, value string) Table {
	out := t.clone()
	if out.Grid == nil {
		out.Grid = make(map[string]map[string]string)
	}
	cols := make(map[string]string, len(out.Grid[row])+1)
	for c, v := range out.Grid[row] {
		cols[c] = v
	}
	cols[col] = value
	out.Grid[row] = cols
	return out
}

func (t Table) clone() Table {
	var out Table
	if t.Cells != nil {
		out.Cells = make(map[string]string, len(t.Cells))
		for k, v := range t.Cells {
			out.Cells[k] = v
		}
	}
	if t.Grid != nil {
		out.Grid = make(map[string]map[string]string, len(t.Grid))
		for row, cols := range t.Grid {
			m := make(map[string]string, len(cols))
			for c, v := range cols {
				m[c] = v
			}
			out.Grid[row] = m
		}
	}
	return out
}

// Choice radio_with_text 的答案
type Choice struct {
	Value string `json:"value"`
	Note  string `json:"note"`
}

func (c Choice) IsEmpty() bool { return c.Value == "" && c.Note == "" }

func (c Choice) Primary() (string, bool) { return c.Value, c.Value != "" }

func (c Choice) Wire() any {
	return map[string]any{"value": c.Value, "note": c.Note}
}

// Level slider 的答案，取值 [SliderMin, SliderMax]
type Level int

func (l Level) IsEmpty() bool { return l == 0 }

func (l Level) Primary() (string, bool) { return strconv.Itoa(int(l)), l != 0 }

func (l Level) Wire() any { return int(l) }

// Flag yes_only 的答案：勾选时保存字面量 "Ya"，取消勾选时槽位被清空
type Flag string

const FlagYes Flag = "Ya"

func (f Flag) IsEmpty() bool { return f == "" }

func (f Flag) Primary() (string, bool) { return string(f), f != "" }

func (f Flag) Wire() any { return string(f) }

// DefaultAnswer 按作答类型给出空答案。yes_only 默认不设置，返回 nil
func DefaultAnswer(t AnswerType) Value {
	switch t.Canonical() {
	case TypeCheckbox:
		return Set{}
	case TypeMulti:
		return Records{}
	case TypeTable:
		return Table{}
	case TypeRadioWithText:
		return Choice{}
	case TypeSlider:
		return Level(SliderMin)
	case TypeYesOnly:
		return nil
	default:
		return Text("")
	}
}

// DecodeValue 把接口返回的原始答案还原成对应类型的值，不经过写入侧的变更操作。
// 无法识别的输入返回 nil
func DecodeValue(t AnswerType, raw any) Value {
	raw = unwrapEncoded(raw)
	if raw == nil {
		return nil
	}

	switch t.Canonical() {
	case TypeCheckbox:
		switch v := raw.(type) {
		case []any:
			out := make(Set, 0, len(v))
			for _, item := range v {
				out = append(out, stringify(item))
			}
			return out
		case string:
			if v == "" {
				return Set{}
			}
			return Set{v}
		}
	case TypeMulti:
		if items, ok := raw.([]any); ok {
			out := make(Records, 0, len(items))
			for _, item := range items {
				m, ok := item.(map[string]any)
				if !ok {
					continue
				}
				row := make(Record, len(m))
				for k, v := range m {
					row[k] = stringify(v)
				}
				out = append(out, row)
			}
			return out
		}
	case TypeTable:
		return decodeTable(raw)
	case TypeRadioWithText:
		if m, ok := raw.(map[string]any); ok {
			c := Choice{Note: stringify(m["note"])}
			if s, ok := primaryField(m); ok {
				c.Value = s
			}
			return c
		}
		return Choice{Value: stringify(raw)}
	case TypeSlider:
		switch v := raw.(type) {
		case float64:
			return Level(int(v))
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return Level(n)
			}
		}
	case TypeYesOnly:
		switch v := raw.(type) {
		case bool:
			if v {
				return FlagYes
			}
			return nil
		case string:
			if v == string(FlagYes) {
				return FlagYes
			}
			return nil
		}
	default:
		if m, ok := raw.(map[string]any); ok {
			if s, ok := primaryField(m); ok {
				return Text(s)
			}
			return nil
		}
		return Text(stringify(raw))
	}
	return nil
}

// decodeTable 同时接受“行 → 值”的映射和提交时展开的行记录数组（kegiatan + 列）
func decodeTable(raw any) Value {
	switch v := raw.(type) {
	case map[string]any:
		var t Table
		for row, cell := range v {
			switch c := cell.(type) {
			case map[string]any:
				for col, cv := range c {
					if cv == nil {
						continue
					}
					t = t.WithGridCell(row, col, stringify(cv))
				}
			case nil:
			default:
				t = t.WithCell(row, stringify(c))
			}
		}
		return t
	case []any:
		var t Table
		for _, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			row := stringify(m[TableRowKey])
			if row == "" {
				continue
			}
			for col, cv := range m {
				if col == TableRowKey || cv == nil {
					continue
				}
				if col == TableValueKey {
					t = t.WithCell(row, stringify(cv))
					continue
				}
				t = t.WithGridCell(row, col, stringify(cv))
			}
		}
		return t
	}
	return nil
}

// primaryField 复合答案的主字段：优先 status，其次 value
func primaryField(m map[string]any) (string, bool) {
	if v, ok := m["status"]; ok && v != nil {
		return stringify(v), true
	}
	if v, ok := m["value"]; ok && v != nil {
		return stringify(v), true
	}
	return "", false
}

// unwrapEncoded 字符串形式的 JSON 数组/对象先解析一次
func unwrapEncoded(raw any) any {
	s, ok := raw.(string)
	if !ok {
		return raw
	}
	trimmed := strings.TrimSpace(s)
	if len(trimmed) < 2 || (trimmed[0] != '[' && trimmed[0] != '{') {
		return raw
	}
	var out any
	if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
		return raw
	}
	return out
}

// stringify 与前端 String(x) 的行为保持一致：数字不带多余的小数位，对象输出紧凑 JSON
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	case json.Number:
		return x.String()
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func sortedInts(m map[int]Value) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
