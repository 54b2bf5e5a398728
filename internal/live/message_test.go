package live

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_ReloadWireFormat(t *testing.T) {
	payload, err := json.Marshal(Reload())
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"reload"}`, string(payload))
}

func TestMessage_DiffWireFormat(t *testing.T) {
	payload, err := json.Marshal(Diff("/foo/", ResourceHTML))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"diff","path":"/foo/","resource":"html"}`, string(payload))

	// Tags stay kebab-case, resources stay lowercase.
	assert.Contains(t, string(payload), `"resource":"html"`)
	assert.Contains(t, string(payload), `"type":"diff"`)

	payload, err = json.Marshal(Diff("/styles/app.css", ResourceCSS))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"diff","path":"/styles/app.css","resource":"css"}`, string(payload))
}
