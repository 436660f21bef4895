package valueobjects

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptbuilder/domain/config"
	pkgerrors "promptbuilder/pkg/errors"
)

func TestNewPromptContent(t *testing.T) {
	tests := []struct {
		name      string
		title     string
		body      string
		wantTitle string
		wantBody  string
		wantErr   bool
		errMsg    string
	}{
		{name: "trims both fields", title: "  Greeting ", body: "\nHi there\n", wantTitle: "Greeting", wantBody: "Hi there"},
		{name: "blank title", title: "   ", body: "Hi", wantErr: true, errMsg: "title cannot be empty"},
		{name: "blank body", title: "Greeting", body: " \t", wantErr: true, errMsg: "content cannot be empty"},
		{name: "title too long", title: strings.Repeat("a", 201), body: "Hi", wantErr: true, errMsg: "title exceeds"},
		{name: "body too long", title: "T", body: strings.Repeat("a", 50001), wantErr: true, errMsg: "content exceeds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewPromptContent(tt.title, tt.body)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, pkgerrors.IsValidation(err))
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, c.Title())
			assert.Equal(t, tt.wantBody, c.Body())
		})
	}
}

func TestNewPromptContentWithConfig_Limits(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	cfg.MaxTitleLength = 3

	_, err := NewPromptContentWithConfig("abcd", "body", cfg)
	assert.Error(t, err)

	c, err := NewPromptContentWithConfig("abc", "body", cfg)
	require.NoError(t, err)
	assert.Equal(t, "abc", c.Title())
}

func TestPromptContent_Matches(t *testing.T) {
	c, err := NewPromptContent("Code Review", "Check the diff for bugs")
	require.NoError(t, err)

	assert.True(t, c.Matches("review"))
	assert.True(t, c.Matches("DIFF"))
	assert.True(t, c.Matches(""))
	assert.False(t, c.Matches("poem"))
}

func TestPromptContent_Summary(t *testing.T) {
	c, err := NewPromptContent("T", "abcdefghij")
	require.NoError(t, err)

	assert.Equal(t, "abcdefghij", c.Summary(20))
	assert.Equal(t, "abcd...", c.Summary(7))
	assert.Equal(t, "", c.Summary(0))
}
