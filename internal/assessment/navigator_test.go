package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNavigator(t *testing.T) {
	n := NewNavigator([]string{"identitas", "kehamilan", "kelahiran"})

	assert.Equal(t, "identitas", n.Current())
	assert.Equal(t, ActionNext, n.Forward())
	assert.False(t, n.Prev())
	assert.Equal(t, 0, n.Index())

	assert.True(t, n.Next())
	assert.True(t, n.Next())
	assert.Equal(t, "kelahiran", n.Current())
	assert.Equal(t, ActionSubmit, n.Forward())

	assert.False(t, n.Next())
	assert.Equal(t, 2, n.Index())

	assert.True(t, n.JumpTo("kehamilan"))
	assert.Equal(t, 1, n.Index())
	assert.False(t, n.JumpTo("unknown"))
	assert.Equal(t, 1, n.Index())

	assert.Equal(t, Position{CurrentIndex: 1, Total: 3, Key: "kehamilan", Forward: ActionNext, CanGoBack: true}, n.Position())
}

func TestNavigatorEmpty(t *testing.T) {
	n := NewNavigator(nil)
	assert.Equal(t, "", n.Current())
	assert.False(t, n.Next())
	assert.False(t, n.Prev())
	assert.Equal(t, ActionSubmit, n.Forward())
	assert.Equal(t, 0, n.Total())
}
