package printer

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"

	"github.com/hay-kot/parcel/internal/core/storage"
)

func TestFatalError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains []string
		excludes []string
	}{
		{
			name:     "plain error",
			err:      errors.New("boom"),
			contains: []string{"╭ Error", "│ boom"},
			excludes: []string{Arrow},
		},
		{
			name:     "write failure",
			err:      fmt.Errorf("save wishlist: %w", storage.ErrWrite),
			contains: []string{"╭ Storage Error", "save wishlist", Arrow + " changes are kept for this run only"},
		},
		{
			name:     "read failure",
			err:      fmt.Errorf("load history: %w", storage.ErrRead),
			contains: []string{"╭ Storage Error", "parcel doctor"},
		},
		{
			name: "validation errors",
			err: fmt.Errorf("load config: %w", criterio.FieldErrors{
				{Field: "history.max_entries", Err: errors.New("must be at least 1")},
			}),
			contains: []string{"╭ Validation Error", "load config", "history.max_entries: must be at least 1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			New(&buf).FatalError(tt.err)

			out := buf.String()
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestFatalError_Nil(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).FatalError(nil)
	assert.Empty(t, buf.String())
}

func TestPrinter_NoColorForBuffers(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)

	p.Section("Installed (2)")
	p.Successf("added %s", "com.example.widget")

	assert.Equal(t, "Installed (2)\n"+Check+" added com.example.widget\n", buf.String())
}

func TestPrinter_ItemHints(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)

	p.CheckItem("Catalog", "3 installed")
	p.WarnItem("com.example.gone", "not in the catalog", "run 'parcel doctor --fix'")
	p.FailItem("History", "parse error", "")

	want := "  " + Check + " Catalog: 3 installed\n" +
		"  " + Dot + " com.example.gone: not in the catalog\n" +
		"    " + Arrow + " run 'parcel doctor --fix'\n" +
		"  " + Cross + " History: parse error\n"
	assert.Equal(t, want, buf.String())
}
