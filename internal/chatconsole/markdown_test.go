// ABOUTME: Tests for transcript markdown rendering
// ABOUTME: Checks formatting, hard line breaks and raw HTML suppression

package chatconsole

import (
	"strings"
	"testing"
)

func TestRenderMarkdown(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		contains    []string
		notContains []string
	}{
		{
			name:     "bold",
			input:    "Voici **nos offres**",
			contains: []string{"<strong>nos offres</strong>"},
		},
		{
			name:     "line breaks kept",
			input:    "ligne 1\nligne 2",
			contains: []string{"ligne 1<br>"},
		},
		{
			name:     "list",
			input:    "- santé\n- auto",
			contains: []string{"<li>santé</li>", "<li>auto</li>"},
		},
		{
			name:        "raw html omitted",
			input:       "<script>alert(1)</script>",
			notContains: []string{"<script>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(RenderMarkdown(tt.input))
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("RenderMarkdown(%q) = %q, want it to contain %q", tt.input, got, want)
				}
			}
			for _, bad := range tt.notContains {
				if strings.Contains(got, bad) {
					t.Errorf("RenderMarkdown(%q) = %q, must not contain %q", tt.input, got, bad)
				}
			}
		})
	}
}
