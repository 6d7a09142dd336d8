package diagnostic

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnostic_String(t *testing.T) {
	d := Diagnostic{
		Severity: SeverityWarning,
		Category: CategoryUnresolvedName,
		Subject:  "#/components/schemas/Paged",
		Message:  "reference could not be resolved, rendering as any",
		Hint:     "add the nested generic type to the schema document",
	}

	s := d.String()
	assert.Contains(t, s, "#/components/schemas/Paged - ")
	assert.Contains(t, s, "warning")
	assert.Contains(t, s, "[unresolved-name]")
	assert.Contains(t, s, "hint:")
}

func TestCollector_WarnAndError(t *testing.T) {
	c := NewCollector(false, false)
	c.Warn(CategorySchemaFallback, "Foo.bar", "sentinel shape")
	c.Error(CategoryConfigInvalid, "", "missing config field")

	assert.Equal(t, 1, c.WarningCount())
	assert.Equal(t, 1, c.ErrorCount())
	assert.True(t, c.HasErrors())
}

func TestCollector_StrictMode(t *testing.T) {
	c := NewCollector(true, false)
	c.Warn(CategoryUnresolvedName, "ref", "unresolved")

	assert.Equal(t, 1, c.ErrorCount(), "warnings become errors in strict mode")
	assert.Equal(t, 0, c.WarningCount())
}

func TestCollector_QuietMode(t *testing.T) {
	c := NewCollector(false, true)
	c.Warn(CategoryUnresolvedName, "ref", "unresolved")
	c.Info(CategoryParameterDropped, "GET /foo", "header dropped")
	c.Error(CategoryConfigInvalid, "", "real error")

	assert.Len(t, c.Diagnostics(), 1, "only errors survive quiet mode")
}

func TestCollector_Summary(t *testing.T) {
	c := NewCollector(false, false)
	c.Warn(CategorySchemaFallback, "a", "warn1")
	c.Warn(CategorySchemaFallback, "b", "warn2")
	c.Error(CategoryConfigInvalid, "", "err1")

	summary := c.Summary()
	assert.Contains(t, summary, "1 error")
	assert.Contains(t, summary, "2 warning")
	assert.Equal(t, "no issues", NewCollector(false, false).Summary())
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector
	c.Warn(CategoryUnresolvedName, "", "test")
	c.Error(CategoryConfigInvalid, "", "test")
	c.Info(CategorySchemaFallback, "", "test")
	assert.False(t, c.HasErrors())
	assert.Empty(t, c.Summary())
	assert.Empty(t, c.FormatAll())
}

func TestCollector_FormatAll(t *testing.T) {
	c := NewCollector(false, false)
	c.Warn(CategorySchemaFallback, "#/components/schemas/Bag", "Dictionary rendered as any")

	assert.Contains(t, c.FormatAll(), "#/components/schemas/Bag - warning")
}

func TestCollector_WarnWithHint(t *testing.T) {
	c := NewCollector(false, false)
	c.WarnWithHint(CategoryUnresolvedName, "ref", "missing", "declare it")

	diags := c.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, "declare it", diags[0].Hint)
}

func TestCollector_ConcurrentWrites(t *testing.T) {
	c := NewCollector(false, false)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Warn(CategoryUnresolvedName, "ref", "unresolved")
		}()
	}
	wg.Wait()

	assert.Equal(t, 16, c.WarningCount())
}
