package assessment

import (
	"fmt"
	"strconv"
	"strings"
)

// InputKind 前端渲染控件
type InputKind string

const (
	InputText     InputKind = "text"
	InputNumeric  InputKind = "numeric"
	InputTextarea InputKind = "textarea"
	InputSelect   InputKind = "select"
	InputRadio    InputKind = "radio"
	InputCheckbox InputKind = "checkbox"
	InputChoice   InputKind = "radio_with_text"
	InputRecords  InputKind = "multi"
	InputTable    InputKind = "table"
	InputSlider   InputKind = "slider"
	InputCheck    InputKind = "yes_only"
)

type EventKind string

const (
	EventSet       EventKind = "set"
	EventToggle    EventKind = "toggle"
	EventNote      EventKind = "note"
	EventCell      EventKind = "cell"
	EventAddRow    EventKind = "add_row"
	EventUpdateRow EventKind = "update_row"
	EventRemoveRow EventKind = "remove_row"
	EventCheck     EventKind = "check"
)

// Event 一次输入事件
type Event struct {
	Kind    EventKind `json:"kind" binding:"required"`
	Value   string    `json:"value"`
	Row     string    `json:"row,omitempty"`
	Column  string    `json:"column,omitempty"`
	Index   int       `json:"index,omitempty"`
	Field   string    `json:"field,omitempty"`
	Checked bool      `json:"checked,omitempty"`
}

var (
	// NegativeChoices radio_with_text 中需要补充说明的选项
	NegativeChoices = []string{"Tidak", "Belum Imunisasi", "Tidak Lengkap"}

	DefaultRecordFields = []string{"Nama", "Usia"}

	Radio3Options = []string{"Ya", "Tidak", "Kadang-kadang"}
)

func IsNegativeChoice(v string) bool {
	for _, n := range NegativeChoices {
		if n == v {
			return true
		}
	}
	return false
}

// Behavior 每种作答类型的输入元数据与变更约定
type Behavior interface {
	Input() InputKind
	Events() []EventKind
	Apply(store *Store, q Question, ev Event) error
}

// Field 前端渲染一道题所需的全部信息
type Field struct {
	ID         int         `json:"id"`
	Number     string      `json:"question_number,omitempty"`
	Text       string      `json:"question_text"`
	Type       AnswerType  `json:"answer_type"`
	Input      InputKind   `json:"input"`
	Events     []EventKind `json:"events"`
	Options    []string    `json:"options,omitempty"`
	Fields     []string    `json:"fields,omitempty"`
	Rows       []string    `json:"rows,omitempty"`
	Columns    []string    `json:"columns,omitempty"`
	Min        int         `json:"min,omitempty"`
	Max        int         `json:"max,omitempty"`
	NoteActive bool        `json:"note_active,omitempty"`
	Value      any         `json:"value"`
}

type Dispatcher struct {
	behaviors map[AnswerType]Behavior
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{behaviors: map[AnswerType]Behavior{
		TypeText:          scalarBehavior{input: InputText},
		TypeNumber:        scalarBehavior{input: InputNumeric, digitsOnly: true},
		TypeTextarea:      scalarBehavior{input: InputTextarea},
		TypeSelect:        scalarBehavior{input: InputSelect},
		TypeRadio:         scalarBehavior{input: InputRadio},
		TypeCheckbox:      checkboxBehavior{},
		TypeRadioWithText: choiceBehavior{},
		TypeMulti:         recordsBehavior{},
		TypeTable:         tableBehavior{},
		TypeSlider:        sliderBehavior{},
		TypeYesOnly:       flagBehavior{},
	}}
}

func (d *Dispatcher) Behavior(t AnswerType) (Behavior, error) {
	b, ok := d.behaviors[t.Canonical()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAnswerType, t)
	}
	return b, nil
}

// Apply 把事件路由给对应类型的变更操作
func (d *Dispatcher) Apply(store *Store, q Question, ev Event) error {
	b, err := d.Behavior(q.Type)
	if err != nil {
		return err
	}
	return b.Apply(store, q, ev)
}

// Describe 生成渲染视图；未知类型按文本框渲染
func (d *Dispatcher) Describe(q Question, answers AnswerReader) Field {
	f := Field{
		ID:      q.ID,
		Number:  q.Number,
		Text:    q.Text,
		Type:    q.Type,
		Options: q.Options,
		Input:   InputText,
	}
	b, err := d.Behavior(q.Type)
	if err == nil {
		f.Input = b.Input()
		f.Events = b.Events()
	}

	switch q.Type.Canonical() {
	case TypeMulti:
		f.Fields = recordFields(q)
	case TypeTable:
		f.Rows = q.Extra.Rows
		f.Columns = q.Extra.Columns
	case TypeSlider:
		f.Min, f.Max = SliderMin, SliderMax
	}

	if v, ok := answers.Get(q.ID); ok && v != nil {
		f.Value = v.Wire()
		if c, ok := v.(Choice); ok {
			f.NoteActive = IsNegativeChoice(c.Value)
		}
	}
	return f
}

func recordFields(q Question) []string {
	if len(q.Extra.Fields) > 0 {
		return q.Extra.Fields
	}
	return DefaultRecordFields
}

func unsupported(q Question, ev Event) error {
	return fmt.Errorf("%w: %s pada %s", ErrUnsupportedEvent, ev.Kind, q.Type)
}

type scalarBehavior struct {
	input      InputKind
	digitsOnly bool
}

func (b scalarBehavior) Input() InputKind { return b.input }

func (b scalarBehavior) Events() []EventKind { return []EventKind{EventSet} }

func (b scalarBehavior) Apply(store *Store, q Question, ev Event) error {
	if ev.Kind != EventSet {
		return unsupported(q, ev)
	}
	if b.digitsOnly && !isDigits(ev.Value) {
		return fmt.Errorf("%w: hanya angka", ErrInvalidInput)
	}
	store.SetAnswer(q.ID, Text(ev.Value))
	return nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

type checkboxBehavior struct{}

func (checkboxBehavior) Input() InputKind { return InputCheckbox }

func (checkboxBehavior) Events() []EventKind { return []EventKind{EventToggle} }

func (checkboxBehavior) Apply(store *Store, q Question, ev Event) error {
	if ev.Kind != EventToggle {
		return unsupported(q, ev)
	}
	store.ToggleMembership(q.ID, ev.Value)
	return nil
}

type choiceBehavior struct{}

func (choiceBehavior) Input() InputKind { return InputChoice }

func (choiceBehavior) Events() []EventKind { return []EventKind{EventSet, EventNote} }

func (choiceBehavior) Apply(store *Store, q Question, ev Event) error {
	switch ev.Kind {
	case EventSet:
		// 重新选择时备注清空
		store.SetAnswer(q.ID, Choice{Value: ev.Value})
		return nil
	case EventNote:
		current, _ := store.Get(q.ID)
		c, _ := current.(Choice)
		if !IsNegativeChoice(c.Value) {
			return ErrNoteNotAllowed
		}
		c.Note = ev.Value
		store.SetAnswer(q.ID, c)
		return nil
	}
	return unsupported(q, ev)
}

type recordsBehavior struct{}

func (recordsBehavior) Input() InputKind { return InputRecords }

func (recordsBehavior) Events() []EventKind {
	return []EventKind{EventAddRow, EventUpdateRow, EventRemoveRow}
}

func (recordsBehavior) Apply(store *Store, q Question, ev Event) error {
	current, _ := store.Get(q.ID)
	rows, _ := current.(Records)
	rows = rows.clone()

	switch ev.Kind {
	case EventAddRow:
		row := make(Record)
		for _, f := range recordFields(q) {
			row[f] = ""
		}
		rows = append(rows, row)
	case EventUpdateRow:
		if ev.Index < 0 || ev.Index >= len(rows) {
			return fmt.Errorf("%w: baris %d", ErrOutOfRange, ev.Index)
		}
		if ev.Field == "" {
			return fmt.Errorf("%w: field kosong", ErrInvalidInput)
		}
		rows[ev.Index][ev.Field] = ev.Value
	case EventRemoveRow:
		if ev.Index < 0 || ev.Index >= len(rows) {
			return fmt.Errorf("%w: baris %d", ErrOutOfRange, ev.Index)
		}
		rows = append(rows[:ev.Index], rows[ev.Index+1:]...)
	default:
		return unsupported(q, ev)
	}
	store.SetAnswer(q.ID, rows)
	return nil
}

type tableBehavior struct{}

func (tableBehavior) Input() InputKind { return InputTable }

func (tableBehavior) Events() []EventKind { return []EventKind{EventCell} }

func (tableBehavior) Apply(store *Store, q Question, ev Event) error {
	if ev.Kind != EventCell {
		return unsupported(q, ev)
	}
	if ev.Row == "" {
		return fmt.Errorf("%w: row kosong", ErrInvalidInput)
	}
	if len(q.Extra.Columns) > 0 {
		if ev.Column == "" {
			return fmt.Errorf("%w: column kosong", ErrInvalidInput)
		}
		store.SetGridCell(q.ID, ev.Row, ev.Column, ev.Value)
		return nil
	}
	store.SetCell(q.ID, ev.Row, ev.Value)
	return nil
}

type sliderBehavior struct{}

func (sliderBehavior) Input() InputKind { return InputSlider }

func (sliderBehavior) Events() []EventKind { return []EventKind{EventSet} }

func (sliderBehavior) Apply(store *Store, q Question, ev Event) error {
	if ev.Kind != EventSet {
		return unsupported(q, ev)
	}
	n, err := strconv.Atoi(strings.TrimSpace(ev.Value))
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidInput, ev.Value)
	}
	if n < SliderMin || n > SliderMax {
		return fmt.Errorf("%w: %d", ErrOutOfRange, n)
	}
	store.SetAnswer(q.ID, Level(n))
	return nil
}

type flagBehavior struct{}

func (flagBehavior) Input() InputKind { return InputCheck }

func (flagBehavior) Events() []EventKind { return []EventKind{EventCheck} }

func (flagBehavior) Apply(store *Store, q Question, ev Event) error {
	if ev.Kind != EventCheck {
		return unsupported(q, ev)
	}
	if ev.Checked {
		store.SetAnswer(q.ID, FlagYes)
	} else {
		store.SetAnswer(q.ID, nil)
	}
	return nil
}
