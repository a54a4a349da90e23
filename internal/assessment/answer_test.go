package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultAnswer(t *testing.T) {
	tests := []struct {
		typ  AnswerType
		want Value
	}{
		{TypeText, Text("")},
		{TypeNumber, Text("")},
		{TypeTextarea, Text("")},
		{TypeSelect, Text("")},
		{TypeRadio, Text("")},
		{TypeRadio3, Text("")},
		{TypeCheckbox, Set{}},
		{TypeMulti, Records{}},
		{TypeTable, Table{}},
		{TypeRadioWithText, Choice{}},
		{TypeSlider, Level(1)},
		{TypeYesOnly, nil},
		{AnswerType("unknown"), Text("")},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultAnswer(tt.typ))
		})
	}
}

func TestSetToggle(t *testing.T) {
	var s Set
	s = s.Toggle("a")
	assert.True(t, s.Has("a"))

	twice := s.Toggle("b").Toggle("b")
	assert.Equal(t, s, twice)

	removed := s.Toggle("a")
	assert.True(t, removed.IsEmpty())
	// 原值不受影响
	assert.True(t, s.Has("a"))
}

func TestTableWithCell(t *testing.T) {
	base := Table{}.WithCell("Makan", "mandiri")
	next := base.WithCell("Minum", "dibantu")

	v, ok := next.Cell("Makan")
	assert.True(t, ok)
	assert.Equal(t, "mandiri", v)

	_, ok = base.Cell("Minum")
	assert.False(t, ok)
}

func TestValuePrimary(t *testing.T) {
	tests := []struct {
		name   string
		value  Value
		want   string
		wantOK bool
	}{
		{"text", Text("Ya"), "Ya", true},
		{"empty text", Text(""), "", false},
		{"choice", Choice{Value: "Tidak", Note: "x"}, "Tidak", true},
		{"level", Level(4), "4", true},
		{"flag", FlagYes, "Ya", true},
		{"set", Set{"a", "b"}, "a,b", true},
		{"table", Table{}.WithCell("r", "v"), "", false},
		{"records", Records{{"Nama": "A"}}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.value.Primary()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeValue(t *testing.T) {
	tests := []struct {
		name string
		typ  AnswerType
		raw  any
		want Value
	}{
		{"text", TypeText, "halo", Text("halo")},
		{"number from float", TypeNumber, float64(12), Text("12")},
		{"radio unwraps status", TypeRadio, map[string]any{"status": "Ya"}, Text("Ya")},
		{"checkbox array", TypeCheckbox, []any{"a", "b"}, Set{"a", "b"}},
		{"checkbox encoded", TypeCheckbox, `["a","b"]`, Set{"a", "b"}},
		{"slider float", TypeSlider, float64(3), Level(3)},
		{"slider string", TypeSlider, "4", Level(4)},
		{"yes_only string", TypeYesOnly, "Ya", FlagYes},
		{"yes_only bool", TypeYesOnly, true, FlagYes},
		{"yes_only false", TypeYesOnly, false, nil},
		{"choice", TypeRadioWithText, map[string]any{"value": "Tidak", "note": "alergi"}, Choice{Value: "Tidak", Note: "alergi"}},
		{"nil", TypeText, nil, nil},
		{"multi", TypeMulti, []any{map[string]any{"Nama": "Budi", "Usia": float64(7)}}, Records{{"Nama": "Budi", "Usia": "7"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeValue(tt.typ, tt.raw))
		})
	}
}

func TestDecodeValueTableRows(t *testing.T) {
	raw := []any{
		map[string]any{"kegiatan": "Makan", "usia": "2 tahun"},
		map[string]any{"kegiatan": "Minum", "usia": nil},
		map[string]any{"kegiatan": "Mandi", "value": "ya"},
	}

	got, ok := DecodeValue(TypeTable, raw).(Table)
	assert.True(t, ok)

	v, ok := got.GridCell("Makan", "usia")
	assert.True(t, ok)
	assert.Equal(t, "2 tahun", v)

	_, ok = got.GridCell("Minum", "usia")
	assert.False(t, ok)

	v, ok = got.Cell("Mandi")
	assert.True(t, ok)
	assert.Equal(t, "ya", v)
}
