package intent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadJSONL_ParsesAndValidatesEachLine(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "intents.jsonl")
	content := `{"intent_id":"i1","timestamp":"2026-08-03T12:00:00Z","strategy_id":"momentum","account_id":"acct-1","instrument":{"symbol":"AAPL","asset_class":"equity"},"side":"buy","order_type":"market","qty":10}
` + "\n" + `{"intent_id":"i2","timestamp":"2026-08-03T12:00:01Z","strategy_id":"momentum","account_id":"acct-1","instrument":{"symbol":"MSFT","asset_class":"equity"},"side":"sell","order_type":"market","qty":5}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	intents, err := ReadJSONL(path)
	require.NoError(t, err)
	require.Len(t, intents, 2)
	assert.Equal(t, "i1", intents[0].IntentID)
	assert.Equal(t, "i2", intents[1].IntentID)
}

func TestReadJSONL_RejectsInvalidIntent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "intents.jsonl")
	content := `{"intent_id":"i1","timestamp":"2026-08-03T12:00:00Z","strategy_id":"momentum","account_id":"acct-1","instrument":{"symbol":"AAPL","asset_class":"equity"},"side":"buy","order_type":"market","qty":-10}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := ReadJSONL(path)
	assert.Error(t, err)
}
