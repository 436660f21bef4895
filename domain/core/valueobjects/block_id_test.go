package valueobjects

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBlockIDFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		errMsg  string
	}{
		{name: "uuid", input: "0b7c8f3e-4a4e-4b4c-9a55-2f1f1d6f8a10"},
		{name: "client generated token", input: "k3j9x2abc"},
		{name: "empty", input: "", wantErr: true, errMsg: "cannot be empty"},
		{name: "leading space", input: " abc", wantErr: true, errMsg: "whitespace"},
		{name: "inner newline", input: "ab\ncd", wantErr: true, errMsg: "whitespace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := NewBlockIDFromString(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.True(t, id.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, id.String())
		})
	}
}

func TestNewBlockID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewBlockID()
		assert.False(t, seen[id.String()])
		seen[id.String()] = true
	}
}

func TestBlockID_JSON(t *testing.T) {
	id, err := NewBlockIDFromString("abc-123")
	require.NoError(t, err)

	data, err := json.Marshal(id)
	require.NoError(t, err)
	assert.Equal(t, `"abc-123"`, string(data))

	var decoded BlockID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, id.Equals(decoded))

	assert.Error(t, json.Unmarshal([]byte(`42`), &decoded))
	assert.Error(t, json.Unmarshal([]byte(`""`), &decoded))
}
