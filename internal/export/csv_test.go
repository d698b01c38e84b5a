// ABOUTME: Tests for conversation CSV export
// ABOUTME: Verifies header, row count, quote escaping and timestamp format

package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bmi-ci/chatbot360-admin/internal/backend"
)

func TestWriteCSV_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	assert.Equal(t, "ID,Session,Horodatage,Message,Rôle,Utilisateur\n", buf.String())
}

func TestWriteCSV_OneRowPerConversation(t *testing.T) {
	convos := []backend.Conversation{
		{
			ID:        "12",
			SessionID: "sess_1",
			Timestamp: backend.Time{Time: time.Date(2025, 3, 9, 14, 5, 0, 0, time.UTC)},
			Message:   `Il a dit "bonjour", puis est parti`,
			Role:      "user",
			UserName:  "Awa",
		},
		{
			ID:        "13",
			SessionID: "sess_1",
			Timestamp: backend.Time{Time: time.Date(2025, 3, 9, 14, 6, 0, 0, time.UTC)},
			Message:   "Ligne 1\nLigne 2",
			Role:      "assistant",
			UserName:  "Awa",
		},
		{ID: "14", SessionID: "sess_2", Message: "sans date", Role: "system"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, convos))

	out := buf.String()
	assert.Contains(t, out, `"Il a dit ""bonjour"", puis est parti"`)
	assert.Contains(t, out, "09/03/2025 14:05")

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, len(convos)+1)

	assert.Equal(t, Header, records[0])
	assert.Equal(t, []string{"12", "sess_1", "09/03/2025 14:05", `Il a dit "bonjour", puis est parti`, "user", "Awa"}, records[1])
	assert.Equal(t, "Ligne 1\nLigne 2", records[2][3])
	assert.Equal(t, []string{"14", "sess_2", "", "sans date", "system", ""}, records[3])
}
