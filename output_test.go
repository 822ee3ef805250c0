package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steemkit/steembridge/pkg/rpc"
	"github.com/steemkit/steembridge/pkg/steem"
)

func TestParseOutputFormat(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"table", "json", "yaml"} {
		f, err := parseOutputFormat(s)
		require.NoError(t, err)
		assert.Equal(t, outputFormat(s), f)
	}

	_, err := parseOutputFormat("csv")
	assert.Error(t, err)
}

func TestRenderResult(t *testing.T) {
	t.Parallel()

	render := func(format outputFormat, result string) string {
		var buf bytes.Buffer
		require.NoError(t, renderResult(&buf, format, json.RawMessage(result)))
		return buf.String()
	}

	t.Run("json", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "{\n  \"a\": 1\n}\n", render(outputJSON, `{"a":1}`))
	})

	t.Run("yaml keeps large integers", func(t *testing.T) {
		t.Parallel()
		out := render(outputYAML, `{"supply":18446744073709551615,"rate":0.5,"name":"steem"}`)
		assert.Equal(t, "name: steem\nrate: 0.5\nsupply: 18446744073709551615\n", out)
	})

	t.Run("object table", func(t *testing.T) {
		t.Parallel()
		out := render(outputTable, `{"head_block_number":12345,"witness":"alice","extra":{"k":[1,2]}}`)
		assert.Contains(t, out, "head_block_number")
		assert.Contains(t, out, "12345")
		assert.Contains(t, out, `{"k":[1,2]}`)
	})

	t.Run("array of objects table", func(t *testing.T) {
		t.Parallel()
		out := render(outputTable, `[{"name":"go","posts":3},{"name":"steem","comments":1}]`)
		assert.Contains(t, out, "COMMENTS")
		assert.Contains(t, out, "POSTS")
		assert.Contains(t, out, "steem")
	})

	t.Run("scalars and mixed arrays print as json", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "null\n", render(outputTable, `null`))
		assert.Equal(t, "[1,\"a\"]\n", render(outputTable, `[1,"a"]`))
		assert.Equal(t, "[]\n", render(outputTable, `[]`))
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()
		err := renderResult(&bytes.Buffer{}, outputTable, json.RawMessage(`{`))
		assert.ErrorIs(t, err, rpc.ErrTransformation)
	})
}

func TestRenderCapabilities_YAML(t *testing.T) {
	t.Parallel()

	caps := steem.NewCapabilitySet(map[rpc.SubAPI]uint32{
		rpc.DatabaseAPI:         0,
		rpc.LoginAPI:            1,
		rpc.NetworkBroadcastAPI: 2,
		rpc.FollowAPI:           3,
		rpc.MarketHistoryAPI:    4,
	})

	var buf bytes.Buffer
	require.NoError(t, renderCapabilities(&buf, outputYAML, "wss://node.example", caps))
	assert.Equal(t, `endpoint: wss://node.example
apis:
  database_api: 0
  follow_api: 3
  login_api: 1
  market_history_api: 4
  network_broadcast_api: 2
missing:
  - account_by_key_api
`, buf.String())
}
