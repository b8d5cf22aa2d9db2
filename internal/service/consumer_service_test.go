package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateContentTrims(t *testing.T) {
	got, err := ValidateContent("  hello there  ")
	require.NoError(t, err)
	assert.Equal(t, "hello there", got)
}

func TestValidateContentRejectsEmpty(t *testing.T) {
	_, err := ValidateContent("   \n\t ")
	assert.Error(t, err)
}

func TestValidateContentCapsLengthInRunes(t *testing.T) {
	// Multi-byte runes count as one character each.
	ok := strings.Repeat("ё", MaxMessageContentLen)
	got, err := ValidateContent(ok)
	require.NoError(t, err)
	assert.Equal(t, ok, got)

	_, err = ValidateContent(ok + "ё")
	assert.Error(t, err)
}

func TestPreviewTruncates(t *testing.T) {
	short := "quick note"
	assert.Equal(t, short, preview(short))

	long := strings.Repeat("a", 200)
	got := preview(long)
	assert.Equal(t, strings.Repeat("a", 80)+"...", got)
}
