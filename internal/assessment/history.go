package assessment

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// HistoryRecord 后端保存的一条已提交答案
type HistoryRecord struct {
	QuestionID     int             `json:"question_id"`
	QuestionText   string          `json:"question_text"`
	QuestionNumber json.RawMessage `json:"question_number,omitempty"`
	Answer         json.RawMessage `json:"answer"`
	Note           *string         `json:"note"`
}

const (
	FallbackBucketKey   = "default"
	FallbackBucketTitle = "Lainnya"
)

// Layout 历史视图中一组题目的展示方式
type Layout string

const (
	LayoutSlider  Layout = "slider"
	LayoutYesOnly Layout = "yes_only"
	LayoutCheck   Layout = "checkbox"
	LayoutRadio3  Layout = "radio3"
)

type HistoryItem struct {
	QuestionID int        `json:"question_id"`
	Number     string     `json:"question_number,omitempty"`
	Text       string     `json:"question_text"`
	Type       AnswerType `json:"answer_type,omitempty"`
	Value      any        `json:"value"`
	Display    string     `json:"display"`
	Note       *string    `json:"note,omitempty"`
}

type HistoryGroup struct {
	Key     string        `json:"key"`
	Title   string        `json:"title"`
	Layout  Layout        `json:"layout,omitempty"`
	Options []string      `json:"options,omitempty"`
	Items   []HistoryItem `json:"items"`
}

// Grouping 历史记录的分组策略
type Grouping interface {
	Buckets() []Bucket
	Locate(questionID int) (string, bool)
}

type Bucket struct {
	Key   string
	Title string
}

// KeyGrouping 按题目在题库中的分组归类
type KeyGrouping struct {
	Schema *Schema
}

func (g KeyGrouping) Buckets() []Bucket {
	out := make([]Bucket, 0, len(g.Schema.Groups))
	for _, grp := range g.Schema.Groups {
		out = append(out, Bucket{Key: grp.Key, Title: grp.Title})
	}
	return out
}

func (g KeyGrouping) Locate(id int) (string, bool) { return g.Schema.GroupOf(id) }

// RangeGrouping 按固定的题目 id 区间归类
type RangeGrouping struct {
	Ranges []Range
}

func (g RangeGrouping) Buckets() []Bucket {
	out := make([]Bucket, 0, len(g.Ranges))
	for _, r := range g.Ranges {
		out = append(out, Bucket{Key: r.Key, Title: r.Title})
	}
	return out
}

func (g RangeGrouping) Locate(id int) (string, bool) {
	for _, r := range g.Ranges {
		if r.Contains(id) {
			return r.Key, true
		}
	}
	return "", false
}

// GroupingFor 按分类配置选择策略
func GroupingFor(p Profile, schema *Schema, ranges map[string][]Range) Grouping {
	if p.History == GroupByRange {
		return RangeGrouping{Ranges: ranges[p.HistoryRanges]}
	}
	return KeyGrouping{Schema: schema}
}

// Reconstruct 把扁平的已提交答案重新归组，并按题型还原答案形状，不经过任何写入操作
func Reconstruct(records []HistoryRecord, schema *Schema, grouping Grouping, layoutHints bool) []HistoryGroup {
	buckets := grouping.Buckets()
	groups := make([]HistoryGroup, 0, len(buckets)+1)
	index := make(map[string]int, len(buckets))
	for _, b := range buckets {
		if _, dup := index[b.Key]; dup {
			continue
		}
		index[b.Key] = len(groups)
		groups = append(groups, HistoryGroup{Key: b.Key, Title: b.Title, Items: []HistoryItem{}})
	}

	fallback := -1
	for _, rec := range records {
		item := historyItem(rec, schema)
		key, ok := grouping.Locate(rec.QuestionID)
		gi, known := index[key]
		if !ok || !known {
			if fallback < 0 {
				fallback = len(groups)
				groups = append(groups, HistoryGroup{Key: FallbackBucketKey, Title: FallbackBucketTitle})
			}
			gi = fallback
		}
		groups[gi].Items = append(groups[gi].Items, item)
	}

	_, byRange := grouping.(RangeGrouping)
	for i := range groups {
		sortItems(groups[i].Items, schema, byRange)
		if layoutHints && schema != nil {
			if g := schema.Group(groups[i].Key); g != nil {
				groups[i].Layout = LayoutFor(g.Questions)
				if groups[i].Layout == LayoutRadio3 {
					groups[i].Options = Radio3Options
				}
			}
		}
	}
	return groups
}

// sortItems 区间分组按 id 升序，其余按题库顺序
func sortItems(items []HistoryItem, schema *Schema, byID bool) {
	order := func(id int) int { return id }
	if !byID && schema != nil {
		pos := make(map[int]int)
		for i, q := range schema.Questions() {
			if _, ok := pos[q.ID]; !ok {
				pos[q.ID] = i
			}
		}
		order = func(id int) int {
			if p, ok := pos[id]; ok {
				return p
			}
			return len(pos) + id
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return order(items[i].QuestionID) < order(items[j].QuestionID)
	})
}

// LayoutFor 全是 slider / yes_only / checkbox 时使用对应布局，否则三选一单选
func LayoutFor(questions []Question) Layout {
	if len(questions) == 0 {
		return LayoutRadio3
	}
	all := func(t AnswerType) bool {
		for _, q := range questions {
			if q.Type != t {
				return false
			}
		}
		return true
	}
	switch {
	case all(TypeSlider):
		return LayoutSlider
	case all(TypeYesOnly):
		return LayoutYesOnly
	case all(TypeCheckbox):
		return LayoutCheck
	default:
		return LayoutRadio3
	}
}

func historyItem(rec HistoryRecord, schema *Schema) HistoryItem {
	item := HistoryItem{
		QuestionID: rec.QuestionID,
		Number:     scalarText(rec.QuestionNumber),
		Text:       rec.QuestionText,
		Note:       rec.Note,
	}

	var whole any
	if len(rec.Answer) > 0 {
		if err := json.Unmarshal(rec.Answer, &whole); err != nil {
			whole = string(rec.Answer)
		}
	}
	whole = unwrapEncoded(whole)

	// answer.value 优先，缺失时使用整个 answer
	inner := whole
	if m, ok := whole.(map[string]any); ok {
		if v, has := m["value"]; has {
			inner = v
		}
	}
	inner = unwrapEncoded(inner)

	var q Question
	found := false
	if schema != nil {
		q, found = schema.Question(rec.QuestionID)
	}
	if !found {
		item.Value = inner
		item.Display = DisplayString(inner)
		return item
	}

	if item.Text == "" {
		item.Text = q.Text
	}
	if item.Number == "" {
		item.Number = q.Number
	}
	item.Type = q.Type

	source := inner
	if q.Type == TypeRadioWithText {
		source = whole
	}
	if v := DecodeValue(q.Type, source); v != nil {
		item.Value = v.Wire()
	} else {
		item.Value = inner
	}
	item.Display = DisplayString(item.Value)
	return item
}

// DisplayString 历史视图中的文字展示；空值与全空记录显示 "-"
func DisplayString(v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case string:
		if strings.TrimSpace(x) == "" {
			return "-"
		}
		return x
	case bool:
		if x {
			return "Ya"
		}
		return "-"
	case []string:
		if len(x) == 0 {
			return "-"
		}
		return strings.Join(x, ", ")
	case []any:
		if len(x) == 0 {
			return "-"
		}
		parts := make([]string, 0, len(x))
		for _, e := range x {
			parts = append(parts, DisplayString(e))
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		if allFalsy(x) {
			return "-"
		}
		b, _ := json.Marshal(x)
		return string(b)
	case map[string]string:
		empty := true
		for _, s := range x {
			if s != "" {
				empty = false
				break
			}
		}
		if empty {
			return "-"
		}
		b, _ := json.Marshal(x)
		return string(b)
	case []map[string]string:
		if len(x) == 0 {
			return "-"
		}
		b, _ := json.Marshal(x)
		return string(b)
	default:
		return fmt.Sprint(x)
	}
}

func allFalsy(m map[string]any) bool {
	for _, v := range m {
		switch x := v.(type) {
		case nil:
		case string:
			if x != "" {
				return false
			}
		case bool:
			if x {
				return false
			}
		case float64:
			if x != 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
