// ABOUTME: CSV export of loaded conversations
// ABOUTME: One header row plus one row per conversation, quotes doubled by encoding/csv

package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/bmi-ci/chatbot360-admin/internal/backend"
)

// Filename is the download name of the export.
const Filename = "conversations.csv"

// TimestampLayout renders timestamps the way the French short date style does.
const TimestampLayout = "02/01/2006 15:04"

// Header is the first row of every export.
var Header = []string{"ID", "Session", "Horodatage", "Message", "Rôle", "Utilisateur"}

// WriteCSV writes convos as CSV in the order given.
func WriteCSV(w io.Writer, convos []backend.Conversation) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, c := range convos {
		record := []string{
			c.ID.String(),
			c.SessionID,
			formatTimestamp(c.Timestamp),
			c.Message,
			c.Role,
			c.UserName,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing conversation %s: %w", c.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

func formatTimestamp(t backend.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimestampLayout)
}
