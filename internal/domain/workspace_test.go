package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkspace(t *testing.T) {
	now := time.Now()
	ws := NewWorkspace("ws1", "QA Team", now)

	assert.Equal(t, "ws1", ws.ID)
	assert.Equal(t, "QA Team", ws.Name)
	assert.Equal(t, now, ws.CreatedAt)
}

func TestValidateWorkspace(t *testing.T) {
	require.NoError(t, ValidateWorkspace(NewWorkspace("ws1", "QA Team", time.Now())))

	err := ValidateWorkspace(&Workspace{Name: "QA Team"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ID")

	err = ValidateWorkspace(&Workspace{ID: "ws1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Name")

	assert.Error(t, ValidateWorkspace(nil))
}

func TestValidateSavedSearch(t *testing.T) {
	valid := &SavedSearch{ID: "s1", WorkspaceID: "ws1", Name: "tokens", Filter: SearchFilter{Text: "tok"}.WithDefaults()}
	require.NoError(t, ValidateSavedSearch(valid))

	blank := *valid
	blank.Name = "   "
	assert.ErrorContains(t, ValidateSavedSearch(&blank), "Name")

	badFilter := *valid
	badFilter.Filter.Scope = "nowhere"
	assert.ErrorContains(t, ValidateSavedSearch(&badFilter), "search scope")
}
