package sqlitestore

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/konsumhq/konsum/pkg/store"
)

func populatedStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutCategory(ctx, store.Category{ID: "electricity", Description: "mains", Unit: "kWh"}))
	require.NoError(t, s.PutDetail(ctx, "electricity", store.KindMeter, store.Detail{
		ID:         "main",
		Attributes: map[string]interface{}{"serial": "12345"},
	}))
	require.NoError(t, s.PutDetail(ctx, "electricity", store.KindNote, store.Detail{
		ID:         "exchange",
		Attributes: map[string]interface{}{"text": "meter exchanged"},
	}))
	require.NoError(t, s.WriteValue(ctx, "electricity", "77.34", 1700000000))
	require.NoError(t, s.WriteValue(ctx, "electricity", "78.1", 1700000060.5))

	require.NoError(t, s.PutCategory(ctx, store.Category{ID: "water", Unit: "m3"}))
	require.NoError(t, s.WriteValue(ctx, "water", "9", 1700000000))

	return s
}

func TestBackupFormat(t *testing.T) {
	s := populatedStore(t)

	var buf bytes.Buffer
	require.NoError(t, s.Backup(context.Background(), &buf))

	text := buf.String()
	assert.True(t, strings.HasPrefix(text, "schema = 1\n"))
	assert.Contains(t, text, "[category \"electricity\"]\ndescription = \"mains\"\nunit = \"kWh\"\n")
	assert.Contains(t, text, "[meter \"main\"]\nattributes = {\"serial\":\"12345\"}\n")
	assert.Contains(t, text, "[note \"exchange\"]\n")
	assert.Contains(t, text, "[values]\n1700000000 \"77.34\"\n1700000060.5 \"78.1\"\n")
	assert.Contains(t, text, "[category \"water\"]\nunit = \"m3\"\n")
}

func TestBackupRestoreRoundTrip(t *testing.T) {
	s := populatedStore(t)
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, s.Backup(ctx, &buf))

	restored, err := Open(filepath.Join(t.TempDir(), "restored.db"))
	require.NoError(t, err)
	defer restored.Close()

	require.NoError(t, restored.Restore(ctx, &buf))

	categories, err := restored.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []store.Category{
		{ID: "electricity", Description: "mains", Unit: "kWh"},
		{ID: "water", Unit: "m3"},
	}, categories)

	meters, err := restored.ListDetails(ctx, "electricity", store.KindMeter)
	require.NoError(t, err)
	require.Len(t, meters, 1)
	assert.Equal(t, map[string]interface{}{"serial": "12345"}, meters[0].Attributes)

	values := []store.Value{}
	require.NoError(t, restored.EachValue(ctx, "electricity", store.ListOptions{Limit: -1}, func(v store.Value) error {
		values = append(values, v)
		return nil
	}))
	assert.Equal(t, []store.Value{
		{Value: "77.34", Time: 1700000000},
		{Value: "78.1", Time: 1700000060.5},
	}, values)
}

func TestRestoreMalformedLineKeepsPriorEntries(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	stream := strings.Join([]string{
		"schema = 1",
		"",
		`[category "electricity"]`,
		`unit = "kWh"`,
		"",
		"[values]",
		`1700000000 "77.34"`,
		"not-a-value-line-without-separator",
	}, "\n")

	err := s.Restore(ctx, strings.NewReader(stream))
	require.Error(t, err)

	// entries before the malformed line survive
	category, err := s.GetCategory(ctx, "electricity")
	require.NoError(t, err)
	assert.Equal(t, "kWh", category.Unit)

	count := 0
	require.NoError(t, s.EachValue(ctx, "electricity", store.ListOptions{Limit: -1}, func(store.Value) error {
		count++
		return nil
	}))
	assert.Equal(t, 1, count)
}

// attributes and values may carry newlines; quoting must keep the stream
// line oriented
func TestBackupRoundTripWithNewlines(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutCategory(ctx, store.Category{
		ID:          "electricity",
		Description: "first line\nsecond line",
		Unit:        "k\nWh",
	}))
	require.NoError(t, s.WriteValue(ctx, "electricity", "77\n34", 1700000000))

	var buf bytes.Buffer
	require.NoError(t, s.Backup(ctx, &buf))

	restored, err := Open(filepath.Join(t.TempDir(), "restored.db"))
	require.NoError(t, err)
	defer restored.Close()

	require.NoError(t, restored.Restore(ctx, &buf))

	category, err := restored.GetCategory(ctx, "electricity")
	require.NoError(t, err)
	assert.Equal(t, "first line\nsecond line", category.Description)
	assert.Equal(t, "k\nWh", category.Unit)

	values := []store.Value{}
	require.NoError(t, restored.EachValue(ctx, "electricity", store.ListOptions{Limit: -1}, func(v store.Value) error {
		values = append(values, v)
		return nil
	}))
	assert.Equal(t, []store.Value{{Value: "77\n34", Time: 1700000000}}, values)
}

func TestBackupAbortsOnCancel(t *testing.T) {
	s := populatedStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	assert.Error(t, s.Backup(ctx, &buf))
}
