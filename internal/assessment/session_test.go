package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generalRaw() RawSchema {
	return RawSchema{Groups: []RawGroup{
		{
			GroupKey: "kehamilan",
			Title:    "Riwayat Kehamilan",
			Questions: []RawQuestion{
				{ID: 10, QuestionText: "Kehamilan direncanakan?", AnswerType: "radio", AnswerOptions: rawJSON(`["Ya","Tidak"]`)},
				{ID: 11, QuestionText: "Jelaskan", AnswerType: "text", ExtraSchema: rawJSON(`{"conditional_rules":[{"when":"10","operator":"==","value":"Tidak"}]}`)},
			},
		},
		{
			GroupKey:  "kesehatan",
			Title:     "Riwayat Kesehatan",
			Questions: []RawQuestion{{ID: 470, QuestionText: "Imunisasi", AnswerType: "radio_with_text"}},
		},
	}}
}

func TestSessionFlow(t *testing.T) {
	s, err := NewSession(mustProfile(t, CategoryParentGeneral), "42", generalRaw(), nil)
	require.NoError(t, err)

	v := s.View()
	assert.True(t, v.Bootstrap)
	assert.Equal(t, "identitas", v.Group.Key)
	assert.Empty(t, v.Fields)
	assert.Equal(t, 3, v.Position.Total)

	require.True(t, s.Next())
	v = s.View()
	require.Len(t, v.Fields, 1)
	assert.Equal(t, 10, v.Fields[0].ID)

	assert.ErrorIs(t, s.Apply(11, Event{Kind: EventSet, Value: "x"}), ErrQuestionHidden)
	assert.ErrorIs(t, s.Apply(999, Event{Kind: EventSet}), ErrQuestionNotFound)

	require.NoError(t, s.Apply(10, Event{Kind: EventSet, Value: "Tidak"}))
	v = s.View()
	require.Len(t, v.Fields, 2)
	assert.Equal(t, 11, v.Fields[1].ID)

	require.NoError(t, s.Apply(11, Event{Kind: EventSet, Value: "belum siap"}))
	require.NoError(t, s.SetContext("child_name", "Budi"))
	assert.ErrorIs(t, s.SetContext("unknown", "x"), ErrUnknownField)

	require.True(t, s.JumpTo("kesehatan"))
	assert.Equal(t, ActionSubmit, s.Position().Forward)
	assert.False(t, s.Next())

	payload, err := s.Payload()
	require.NoError(t, err)
	assert.Equal(t, []int{10, 11, 470}, questionIDs(payload.Answers))
	assert.Equal(t, "Budi", payload.Context["child_name"])

	snap := s.Snapshot()
	assert.Equal(t, "Tidak", snap[10])
}

func TestSessionReadOnly(t *testing.T) {
	_, err := NewSession(mustProfile(t, CategoryParentGeneral).HistoryView(), "42", generalRaw(), nil)
	assert.ErrorIs(t, err, ErrReadOnlyCategory)
}

func TestSessionSections(t *testing.T) {
	raw := RawSchema{Groups: []RawGroup{{
		GroupKey: "tongue_eval",
		Questions: []RawQuestion{
			{ID: 135, AnswerType: "radio_with_text"},
			{ID: 141, AnswerType: "radio_with_text"},
			{ID: 200, AnswerType: "radio_with_text"},
		},
	}}}
	s, err := NewSession(mustProfile(t, CategoryWicaraOral), "1", raw, nil)
	require.NoError(t, err)

	v := s.View()
	require.Len(t, v.Sections, 3)
	assert.Equal(t, "istirahat", v.Sections[0].Key)
	assert.Equal(t, "keluar", v.Sections[1].Key)
	assert.Equal(t, FallbackBucketKey, v.Sections[2].Key)
	assert.Equal(t, 200, v.Sections[2].Fields[0].ID)
}

func TestLookupProfileUnknown(t *testing.T) {
	_, err := LookupProfile("nope")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}
