package commands

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/parcel/internal/core/history"
)

func TestRecordInput_Validate(t *testing.T) {
	tests := []struct {
		name    string
		input   RecordInput
		wantErr string
	}{
		{
			name:    "empty packages",
			input:   RecordInput{Action: "install"},
			wantErr: "packages",
		},
		{
			name: "unknown action",
			input: RecordInput{Action: "purge", Packages: []RecordPackage{
				{ID: "com.example.shell"},
			}},
			wantErr: "action",
		},
		{
			name: "missing id",
			input: RecordInput{Action: "install", Packages: []RecordPackage{
				{Version: "1.0"},
			}},
			wantErr: "packages[0].id",
		},
		{
			name: "whitespace id",
			input: RecordInput{Action: "install", Packages: []RecordPackage{
				{ID: "   "},
			}},
			wantErr: "id is required",
		},
		{
			name: "duplicate ids",
			input: RecordInput{Action: "update", Packages: []RecordPackage{
				{ID: "com.example.shell"},
				{ID: "com.example.shell"},
			}},
			wantErr: "duplicate",
		},
		{
			name: "valid input",
			input: RecordInput{Action: "update", Packages: []RecordPackage{
				{ID: "com.example.shell", Version: "1.1", PreviousVersion: "1.0"},
				{ID: "com.example.widget"},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRecordInput_Items(t *testing.T) {
	input, err := decodeRecordInput(strings.NewReader(`{
		"action": "update",
		"packages": [
			{"id": "com.example.shell", "version": "1.1", "previous_version": "1.0"},
			{"id": "com.example.widget"}
		]
	}`))
	require.NoError(t, err)
	require.NoError(t, input.Validate())

	items := input.Items()
	require.Len(t, items, 2)

	assert.Equal(t, "com.example.shell", items[0].ID)
	assert.Equal(t, history.StringPtr("1.1"), items[0].NewVersion)
	assert.Equal(t, history.StringPtr("1.0"), items[0].PreviousVersion)

	assert.Nil(t, items[1].NewVersion, "absent versions stay unknown")
	assert.Nil(t, items[1].PreviousVersion)
}

func TestDecodeRecordInput_Malformed(t *testing.T) {
	_, err := decodeRecordInput(strings.NewReader(`{"action":`))
	assert.ErrorContains(t, err, "decode JSON")
}
