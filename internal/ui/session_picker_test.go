package ui

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devlg/devlg/internal/errors"
)

func TestSessionItem(t *testing.T) {
	session := SessionInfo{
		Name: "web",
		User: "deploy",
		Host: "example.com",
		Port: 22,
		Tags: []string{"prod", "frontend"},
	}

	item := sessionItem{session: session}

	t.Run("Title", func(t *testing.T) {
		assert.Equal(t, "web", item.Title())
	})

	t.Run("Description", func(t *testing.T) {
		desc := item.Description()
		assert.Contains(t, desc, "deploy@example.com:22")
		assert.Contains(t, desc, "prod")
		assert.Contains(t, desc, "frontend")
	})

	t.Run("FilterValue", func(t *testing.T) {
		filter := item.FilterValue()
		assert.Contains(t, filter, "web")
		assert.Contains(t, filter, "example.com")
		assert.Contains(t, filter, "prod")
	})
}

func TestSessionItemNoTags(t *testing.T) {
	item := sessionItem{session: SessionInfo{
		Name: "db",
		User: "admin",
		Host: "db.internal",
		Port: 2222,
	}}

	desc := item.Description()
	assert.Equal(t, "admin@db.internal:2222", desc)
	assert.NotContains(t, desc, "[")
}

func TestNewSessionPickerModel(t *testing.T) {
	sessions := []SessionInfo{
		{Name: "web", User: "deploy", Host: "example.com", Port: 22},
		{Name: "db", User: "admin", Host: "db.internal", Port: 2222},
	}

	model := NewSessionPickerModel(sessions)

	assert.Len(t, model.sessions, 2)
	assert.Nil(t, model.selected)
	assert.False(t, model.quitting)
}

func TestSessionPickerModelSelected(t *testing.T) {
	sessions := []SessionInfo{
		{Name: "web", User: "deploy", Host: "example.com", Port: 22},
	}

	model := NewSessionPickerModel(sessions)

	assert.Nil(t, model.Selected())

	model.selected = &sessions[0]
	selected := model.Selected()
	require.NotNil(t, selected)
	assert.Equal(t, "web", selected.Name)
}

func TestPickSessionEmpty(t *testing.T) {
	_, err := PickSession(nil)
	assert.Error(t, err)
}

func TestPickSessionSingleShortCircuits(t *testing.T) {
	sessions := []SessionInfo{
		{Name: "only", User: "deploy", Host: "example.com", Port: 22},
	}

	selected, err := PickSession(sessions)
	require.NoError(t, err)
	require.NotNil(t, selected)
	assert.Equal(t, "only", selected.Name)
}

func TestPickSessionRefusesNonTerminalStdin(t *testing.T) {
	sessions := []SessionInfo{
		{Name: "web", User: "deploy", Host: "example.com", Port: 22},
		{Name: "db", User: "admin", Host: "db.internal", Port: 2222},
	}

	stdin, err := os.CreateTemp(t.TempDir(), "stdin")
	require.NoError(t, err)
	defer stdin.Close()

	_, err = pickSessionFrom(sessions, stdin)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "no terminal")
}

func TestIsTerminalRegularFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "plain")
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, IsTerminal(f))
}
