package assessment

import (
	"fmt"
)

type GroupTab struct {
	Index int    `json:"index"`
	Key   string `json:"group_key"`
	Title string `json:"title"`
}

// Section 分组内按区间拆分出的小节
type Section struct {
	Key    string  `json:"key"`
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

// View 当前步骤的渲染视图
type View struct {
	Category       Category          `json:"category"`
	SubmissionType SubmissionType    `json:"submission_type"`
	AssessmentID   string            `json:"assessment_id"`
	Groups         []GroupTab        `json:"groups"`
	Group          GroupTab          `json:"group"`
	Position       Position          `json:"position"`
	Bootstrap      bool              `json:"bootstrap,omitempty"`
	Fields         []Field           `json:"fields"`
	Sections       []Section         `json:"sections,omitempty"`
	Context        map[string]string `json:"context,omitempty"`
}

// Session 一次评估填写的完整状态。不做任何加锁，调用方需保证同一时间只有一个调用
type Session struct {
	profile      Profile
	assessmentID string
	schema       *Schema
	store        *Store
	nav          *Navigator
	eval         *Evaluator
	dispatch     *Dispatcher
	ranges       map[string][]Range
	context      map[string]string
}

func NewSession(profile Profile, assessmentID string, raw RawSchema, ranges map[string][]Range) (*Session, error) {
	if profile.ReadOnly {
		return nil, ErrReadOnlyCategory
	}
	schema := ParseSchema(string(profile.Category), raw, profile.Bootstrap)
	if ranges == nil {
		ranges = DefaultRanges()
	}
	return &Session{
		profile:      profile,
		assessmentID: assessmentID,
		schema:       schema,
		store:        InitStore(schema),
		nav:          NewNavigator(schema.Keys()),
		eval:         NewEvaluator(schema),
		dispatch:     NewDispatcher(),
		ranges:       ranges,
		context:      make(map[string]string),
	}, nil
}

func (s *Session) Profile() Profile { return s.profile }

func (s *Session) Schema() *Schema { return s.schema }

func (s *Session) AssessmentID() string { return s.assessmentID }

// Apply 处理一道题的输入事件；隐藏的题目不接受输入
func (s *Session) Apply(questionID int, ev Event) error {
	q, ok := s.schema.Question(questionID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrQuestionNotFound, questionID)
	}
	if !s.eval.Visible(q, s.store) {
		return fmt.Errorf("%w: %d", ErrQuestionHidden, questionID)
	}
	return s.dispatch.Apply(s.store, q, ev)
}

// SetContext 写入随提交发送的会话级字段
func (s *Session) SetContext(field, value string) error {
	for _, f := range s.profile.ContextFields {
		if f == field {
			s.context[field] = value
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownField, field)
}

func (s *Session) Next() bool { return s.nav.Next() }

func (s *Session) Prev() bool { return s.nav.Prev() }

func (s *Session) JumpTo(key string) bool { return s.nav.JumpTo(key) }

func (s *Session) Position() Position { return s.nav.Position() }

func (s *Session) Snapshot() map[int]any { return s.store.Snapshot() }

// Payload 序列化当前答案
func (s *Session) Payload() (Payload, error) {
	return Serialize(s.profile, SerializeInput{
		Schema:    s.schema,
		Store:     s.store,
		Evaluator: s.eval,
	}, s.assessmentID, s.context)
}

// View 每次调用都会重新计算可见性
func (s *Session) View() View {
	v := View{
		Category:       s.profile.Category,
		SubmissionType: s.profile.SubmissionType,
		AssessmentID:   s.assessmentID,
		Position:       s.nav.Position(),
		Fields:         []Field{},
	}
	for i, g := range s.schema.Groups {
		v.Groups = append(v.Groups, GroupTab{Index: i, Key: g.Key, Title: g.Title})
	}
	if len(v.Groups) > 0 {
		v.Group = v.Groups[s.nav.Index()]
	}
	if len(s.context) > 0 {
		v.Context = make(map[string]string, len(s.context))
		for k, val := range s.context {
			v.Context[k] = val
		}
	}

	group := s.schema.Group(s.nav.Current())
	if group == nil {
		return v
	}
	v.Bootstrap = s.profile.Bootstrap != nil && group.Key == s.profile.Bootstrap.Key

	for _, q := range s.eval.Filter(group.Questions, s.store) {
		v.Fields = append(v.Fields, s.dispatch.Describe(q, s.store))
	}

	if rangeKey, ok := s.profile.Sections[group.Key]; ok {
		v.Sections = sections(v.Fields, s.ranges[rangeKey])
	}
	return v
}

// sections 按区间切分，空小节不返回，区间外的题目归入“Lainnya”
func sections(fields []Field, ranges []Range) []Section {
	grouping := RangeGrouping{Ranges: ranges}
	out := make([]Section, 0, len(ranges)+1)
	index := make(map[string]int, len(ranges))
	for _, r := range ranges {
		index[r.Key] = len(out)
		out = append(out, Section{Key: r.Key, Title: r.Title})
	}
	fallback := -1
	for _, f := range fields {
		key, ok := grouping.Locate(f.ID)
		if ok {
			out[index[key]].Fields = append(out[index[key]].Fields, f)
			continue
		}
		if fallback < 0 {
			fallback = len(out)
			out = append(out, Section{Key: FallbackBucketKey, Title: FallbackBucketTitle})
		}
		out[fallback].Fields = append(out[fallback].Fields, f)
	}

	result := out[:0]
	for _, sec := range out {
		if len(sec.Fields) > 0 {
			result = append(result, sec)
		}
	}
	return result
}
