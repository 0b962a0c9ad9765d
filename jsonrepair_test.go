package jsonrepair_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	jsonrepair "github.com/charmbracelet/jsonrepair"
)

func TestRepairPassesValidJSONThroughUnchanged(t *testing.T) {
	input := `{"a":1,"b":[2,3]}`
	got, err := jsonrepair.Repair(input)
	require.NoError(t, err)
	require.Equal(t, input, got)
}

func TestRepairFixesMissingClosingBrace(t *testing.T) {
	got, err := jsonrepair.Repair(`{"key": "value"`)
	require.NoError(t, err)
	require.Equal(t, `{"key": "value"}`, got)
}

func TestRepairFixesSingleQuotesAndTrailingComma(t *testing.T) {
	got, err := jsonrepair.Repair(`{'a': 1, 'b': 2,}`)
	require.NoError(t, err)
	require.Equal(t, `{"a": 1, "b": 2}`, got)
}

func TestRepairStripsSurroundingProse(t *testing.T) {
	got, err := jsonrepair.Repair("Sure, here you go: {\"ok\": true}")
	require.NoError(t, err)
	require.Equal(t, `{"ok": true}`, got)
}

func TestRepairWithStrictRejectsMalformedInput(t *testing.T) {
	_, err := jsonrepair.Repair(`{"key": "value"`, jsonrepair.WithStrict())
	require.Error(t, err)
	var strictErr *jsonrepair.StrictModeError
	require.ErrorAs(t, err, &strictErr)
}

func TestRepairWithStrictAcceptsValidInput(t *testing.T) {
	got, err := jsonrepair.Repair(`{"key": "value"}`, jsonrepair.WithStrict())
	require.NoError(t, err)
	require.Equal(t, `{"key": "value"}`, got)
}

func TestRepairWithIndentPrettyPrints(t *testing.T) {
	got, err := jsonrepair.Repair(`{"a":1}`, jsonrepair.WithIndent(2))
	require.NoError(t, err)
	require.Equal(t, "{\n  \"a\": 1\n}", got)
}

func TestRepairWithLogReportsRepairsOnly(t *testing.T) {
	_, log, err := jsonrepair.RepairWithLog(`{"a": 1}`)
	require.NoError(t, err)
	require.Empty(t, log, "valid input should take the fast path and produce no log entries")

	_, log, err = jsonrepair.RepairWithLog(`{"a" 1}`)
	require.NoError(t, err)
	require.NotEmpty(t, log)
}

func TestRepairToValuePreservesKeyOrderOnFastPath(t *testing.T) {
	value, err := jsonrepair.RepairToValue(`{"z": 1, "a": 2}`)
	require.NoError(t, err)
	require.Equal(t, jsonrepair.KindObject, value.Kind())
	require.Equal(t, []string{"z", "a"}, value.Obj().Keys())
}

func TestRepairToValuePreservesKeyOrderOnRepairPath(t *testing.T) {
	value, err := jsonrepair.RepairToValue(`{"z": 1, "a": 2,}`)
	require.NoError(t, err)
	require.Equal(t, []string{"z", "a"}, value.Obj().Keys())
}

func TestRepairToValueKeepsLargeIntegerLexicalForm(t *testing.T) {
	value, err := jsonrepair.RepairToValue(`{"id": 123456789012345678901234567890}`)
	require.NoError(t, err)
	id, ok := value.Obj().Get("id")
	require.True(t, ok)
	require.Equal(t, jsonrepair.KindNumber, id.Kind())
	require.Equal(t, "123456789012345678901234567890", id.Number().String())
}

func TestLoadFileRepairsTruncatedJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a": [1, 2, 3`), 0o644))

	value, err := jsonrepair.LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, jsonrepair.KindObject, value.Kind())
	items, ok := value.Obj().Get("a")
	require.True(t, ok)
	require.Len(t, items.Items(), 3)
}

func TestLoadFilePropagatesOpenError(t *testing.T) {
	_, err := jsonrepair.LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestWithSkipInitialValidationStillRepairsValidInput(t *testing.T) {
	got, err := jsonrepair.Repair(`{"a": 1}`, jsonrepair.WithSkipInitialValidation())
	require.NoError(t, err)
	require.Equal(t, `{"a": 1}`, got)
}
