package assessment

import (
	"encoding/json"
	"puspa_backend/pkg/logger"

	"go.uber.org/zap"
)

// RawQuestion 接口返回的题目，answer_options / extra_schema 可能是编码后的字符串
type RawQuestion struct {
	ID             int             `json:"id"`
	QuestionID     json.RawMessage `json:"question_id,omitempty"`
	QuestionCode   string          `json:"question_code,omitempty"`
	QuestionNumber json.RawMessage `json:"question_number,omitempty"`
	QuestionText   string          `json:"question_text"`
	AnswerType     string          `json:"answer_type"`
	AnswerOptions  json.RawMessage `json:"answer_options,omitempty"`
	ExtraSchema    json.RawMessage `json:"extra_schema,omitempty"`
}

type RawGroup struct {
	GroupKey  string        `json:"group_key"`
	Title     string        `json:"title"`
	Questions []RawQuestion `json:"questions"`
}

type RawSchema struct {
	Groups []RawGroup `json:"groups"`
}

// Rule 条件显示规则
type Rule struct {
	When     string `json:"when"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

type Extra struct {
	Fields  []string `json:"fields,omitempty"`
	Rows    []string `json:"rows,omitempty"`
	Columns []string `json:"columns,omitempty"`
	Rules   []Rule   `json:"conditional_rules,omitempty"`
}

type Question struct {
	ID       int        `json:"id"`
	AltID    string     `json:"question_id,omitempty"`
	Code     string     `json:"question_code,omitempty"`
	Number   string     `json:"question_number,omitempty"`
	Text     string     `json:"question_text"`
	Type     AnswerType `json:"answer_type"`
	Options  []string   `json:"options"`
	Extra    Extra      `json:"extra"`
	GroupKey string     `json:"group_key"`
}

type Group struct {
	Key       string     `json:"group_key"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// GroupStub 分类需要但题库里可能缺失的引导分组（例如身份信息表单）
type GroupStub struct {
	Key   string
	Title string
}

type Schema struct {
	Category string
	Groups   []Group

	index map[int]position
}

type position struct {
	group int
	item  int
}

// ParseSchema 把原始题库转成规范化的模型。畸形片段退化为默认值，不会失败
func ParseSchema(category string, raw RawSchema, bootstrap *GroupStub) *Schema {
	s := &Schema{Category: category}

	for _, rg := range raw.Groups {
		g := Group{Key: rg.GroupKey, Title: rg.Title, Questions: make([]Question, 0, len(rg.Questions))}
		for _, rq := range rg.Questions {
			g.Questions = append(g.Questions, parseQuestion(rq, rg.GroupKey))
		}
		s.Groups = append(s.Groups, g)
	}

	if bootstrap != nil && s.Group(bootstrap.Key) == nil {
		s.Groups = append([]Group{{Key: bootstrap.Key, Title: bootstrap.Title, Questions: []Question{}}}, s.Groups...)
	}

	s.reindex()
	return s
}

func (s *Schema) reindex() {
	s.index = make(map[int]position)
	seen := make(map[string]bool, len(s.Groups))
	for gi, g := range s.Groups {
		if seen[g.Key] {
			logger.Log.Warn("Duplicate group key in schema",
				zap.String("category", s.Category),
				zap.String("group_key", g.Key))
		}
		seen[g.Key] = true
		for qi, q := range g.Questions {
			if _, dup := s.index[q.ID]; dup {
				continue
			}
			s.index[q.ID] = position{group: gi, item: qi}
		}
	}
}

func parseQuestion(rq RawQuestion, groupKey string) Question {
	q := Question{
		ID:       rq.ID,
		AltID:    scalarText(rq.QuestionID),
		Code:     rq.QuestionCode,
		Number:   scalarText(rq.QuestionNumber),
		Text:     rq.QuestionText,
		Type:     AnswerType(rq.AnswerType),
		GroupKey: groupKey,
	}

	fields := Decode(rq.ExtraSchema, map[string]json.RawMessage{}, "extra_schema")
	q.Extra = Extra{
		Fields:  NormalizeOptions(Decode(fields["fields"], []any{}, "extra_schema.fields")),
		Rows:    NormalizeOptions(Decode(fields["rows"], []any{}, "extra_schema.rows")),
		Columns: NormalizeOptions(Decode(fields["columns"], []any{}, "extra_schema.columns")),
		Rules:   parseRules(fields["conditional_rules"]),
	}

	// extra.options 是数组时优先，否则回落到 answer_options
	if opts, ok := extraOptions(fields["options"]); ok {
		q.Options = opts
	} else {
		q.Options = NormalizeOptions(Decode(rq.AnswerOptions, []any{}, "answer_options"))
	}

	if q.Type == TypeRadio3 && len(q.Options) == 0 {
		q.Options = append([]string(nil), Radio3Options...)
	}
	return q
}

func extraOptions(raw json.RawMessage) ([]string, bool) {
	data, ok := unquote(raw)
	if !ok || data[0] != '[' {
		return nil, false
	}
	var items []any
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false
	}
	return NormalizeOptions(items), true
}

type rawRule struct {
	When     any    `json:"when"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

func parseRules(raw json.RawMessage) []Rule {
	items := Decode(raw, []rawRule{}, "extra_schema.conditional_rules")
	if len(items) == 0 {
		return nil
	}
	rules := make([]Rule, 0, len(items))
	for _, r := range items {
		rules = append(rules, Rule{When: stringify(r.When), Operator: r.Operator, Value: stringify(r.Value)})
	}
	return rules
}

// Group 按 key 查分组，不存在返回 nil
func (s *Schema) Group(key string) *Group {
	for i := range s.Groups {
		if s.Groups[i].Key == key {
			return &s.Groups[i]
		}
	}
	return nil
}

// Question 按 id 查题目
func (s *Schema) Question(id int) (Question, bool) {
	pos, ok := s.index[id]
	if !ok {
		return Question{}, false
	}
	return s.Groups[pos.group].Questions[pos.item], true
}

// Questions 按分组顺序展开全部题目
func (s *Schema) Questions() []Question {
	var out []Question
	for _, g := range s.Groups {
		out = append(out, g.Questions...)
	}
	return out
}

func (s *Schema) Keys() []string {
	keys := make([]string, 0, len(s.Groups))
	for _, g := range s.Groups {
		keys = append(keys, g.Key)
	}
	return keys
}

// GroupOf 返回题目所属分组的 key
func (s *Schema) GroupOf(id int) (string, bool) {
	pos, ok := s.index[id]
	if !ok {
		return "", false
	}
	return s.Groups[pos.group].Key, true
}
