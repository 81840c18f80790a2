package util

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashKeyStableHex(t *testing.T) {
	got := HashKey("workspace-42")
	require.Equal(t, got, HashKey("workspace-42"))
	require.Len(t, got, 64)
	assert.Regexp(t, "^[0-9a-f]+$", got)
	assert.NotEqual(t, got, HashKey("workspace-43"))
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "report.pdf", want: "report.pdf"},
		{in: "  notes/q3  plan.md ", want: "q3 plan.md"},
		{in: `C:\Users\me\a.docx`, want: "a.docx"},
		{in: "tab\tthere.txt", want: "tab there.txt"},
		{in: "bell\x07.txt", want: "bell.txt"},
		{in: "../escape.txt", wantErr: true},
		{in: `dir\..\x`, wantErr: true},
		{in: "   ", wantErr: true},
		{in: "/", wantErr: true},
	}
	for _, tt := range tests {
		got, err := SanitizeFileName(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidFileName, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestSanitizeFileNameKeepsExtensionWhenTruncating(t *testing.T) {
	got, err := SanitizeFileName(strings.Repeat("é", 200) + ".pdf")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(got), MaxFileNameBytes)
	assert.True(t, strings.HasSuffix(got, ".pdf"))
	assert.True(t, utf8.ValidString(got))
}
