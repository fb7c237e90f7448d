package serve

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest_SectionUnmarshal(t *testing.T) {
	input := `{"type":"extract","payload":{"lines":["a"],"patterns":["a.*"],"ignorecase":true,"prefix":"p","filename":"out.txt"}}`

	var req Request
	require.NoError(t, json.Unmarshal([]byte(input), &req))
	assert.Equal(t, "extract", req.Type)

	var payload SectionPayload
	require.NoError(t, json.Unmarshal(req.Payload, &payload))
	assert.Equal(t, SectionPayload{
		Lines:      []string{"a"},
		Patterns:   []string{"a.*"},
		IgnoreCase: true,
		Prefix:     "p",
		Filename:   "out.txt",
	}, payload)
}

func TestResponse_Marshal(t *testing.T) {
	data, err := json.Marshal(Response{Success: true, Type: "ready"})
	require.NoError(t, err)

	assert.Contains(t, string(data), `"success":true`)
	assert.Contains(t, string(data), `"type":"ready"`)
	assert.NotContains(t, string(data), "error_kind")
}
