package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagSessionAdd(t *testing.T) {
	withTempConfig(t)

	require.NoError(t, tagSession("web", []string{"staging"}, "add"))

	s := reloadConfig(t).Get("web")
	require.NotNil(t, s)
	assert.Contains(t, s.Tags, "staging")
	assert.Contains(t, s.Tags, "prod")
}

func TestTagSessionAddDeduplicates(t *testing.T) {
	withTempConfig(t)

	require.NoError(t, tagSession("web", []string{"prod"}, "add"))

	s := reloadConfig(t).Get("web")
	require.NotNil(t, s)
	assert.Equal(t, []string{"prod", "frontend"}, s.Tags)
}

func TestTagSessionRemove(t *testing.T) {
	withTempConfig(t)

	require.NoError(t, tagSession("web", []string{"frontend"}, "remove"))

	s := reloadConfig(t).Get("web")
	require.NotNil(t, s)
	assert.Equal(t, []string{"prod"}, s.Tags)
}

func TestTagSessionList(t *testing.T) {
	withTempConfig(t)
	require.NoError(t, tagSession("web", nil, "list"))
}

func TestTagSessionUnknownAction(t *testing.T) {
	withTempConfig(t)
	assert.Error(t, tagSession("web", []string{"x"}, "rename"))
}

func TestTagSessionUnknownSession(t *testing.T) {
	withTempConfig(t)
	assert.Error(t, tagSession("nosuch", []string{"x"}, "add"))
}

func TestTagSessionAddWithoutTags(t *testing.T) {
	withTempConfig(t)
	assert.Error(t, tagSession("web", nil, "add"))
}
