package rpc_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steemkit/steembridge/pkg/rpc"
)

func TestEncodeRequest(t *testing.T) {
	t.Parallel()

	apiID := uint32(0)
	tests := []struct {
		name string
		req  rpc.Request
		want string
	}{
		{
			name: "positional params",
			req:  rpc.Request{ID: 7, API: rpc.DatabaseAPI, Method: rpc.GetContent, Params: []any{"alice", "hello-world"}},
			want: `{"id":7,"method":"call","params":["database_api","get_content",["alice","hello-world"]]}`,
		},
		{
			name: "no params",
			req:  rpc.NewRequest(rpc.DatabaseAPI, rpc.GetAccountCount),
			want: `{"id":0,"method":"call","params":["database_api","get_account_count",[]]}`,
		},
		{
			name: "numeric api id",
			req:  rpc.Request{ID: 3, API: rpc.DatabaseAPI, APIID: &apiID, Method: rpc.GetWitnessCount},
			want: `{"id":3,"method":"call","params":[0,"get_witness_count",[]]}`,
		},
		{
			name: "structured param stays one element",
			req: rpc.Request{ID: 1, API: rpc.DatabaseAPI, Method: rpc.GetDiscussionsByTrending, Params: []any{
				map[string]any{"tag": "steem", "limit": 2},
			}},
			want: `{"id":1,"method":"call","params":["database_api","get_discussions_by_trending",[{"limit":2,"tag":"steem"}]]}`,
		},
		{
			name: "array param stays one element",
			req:  rpc.Request{ID: 9, API: rpc.AccountByKeyAPI, Method: rpc.GetKeyReferences, Params: []any{[]string{"STM1", "STM2"}}},
			want: `{"id":9,"method":"call","params":["account_by_key_api","get_key_references",[["STM1","STM2"]]]}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			data, err := rpc.EncodeRequest(tc.req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(data))
		})
	}
}

func TestEncodeRequest_Unmarshalable(t *testing.T) {
	t.Parallel()

	req := rpc.NewRequest(rpc.DatabaseAPI, rpc.GetContent, make(chan int))
	_, err := rpc.EncodeRequest(req)
	require.Error(t, err)
	assert.ErrorIs(t, err, rpc.ErrMarshalingRequest)
}

func TestDecodeRequest_RoundTrip(t *testing.T) {
	t.Parallel()

	req := rpc.Request{ID: 12, API: rpc.FollowAPI, Method: "get_followers", Params: []any{"alice", "", "blog"}}
	data, err := rpc.EncodeRequest(req)
	require.NoError(t, err)

	decoded, err := rpc.DecodeRequest(data)
	require.NoError(t, err)
	assert.Equal(t, req, decoded)

	_, err = rpc.DecodeRequest([]byte(`{"id":1,"method":"notice","params":[]}`))
	assert.ErrorIs(t, err, rpc.ErrProtocolViolation)
}

func TestDecodeResponse(t *testing.T) {
	t.Parallel()

	t.Run("result", func(t *testing.T) {
		t.Parallel()

		res, err := rpc.DecodeResponse([]byte(`{"id":4,"result":[1,2,3]}`))
		require.NoError(t, err)
		assert.Equal(t, uint64(4), res.ID)
		assert.JSONEq(t, `[1,2,3]`, string(res.Result))
		assert.Nil(t, res.Error)
		assert.NoError(t, res.Err())
	})

	t.Run("null result", func(t *testing.T) {
		t.Parallel()

		res, err := rpc.DecodeResponse([]byte(`{"id":4,"result":null}`))
		require.NoError(t, err)
		assert.Equal(t, json.RawMessage("null"), res.Result)
	})

	t.Run("error", func(t *testing.T) {
		t.Parallel()

		res, err := rpc.DecodeResponse([]byte(`{"id":5,"error":{"code":1,"message":"unknown key","data":{"stack":[]}}}`))
		require.NoError(t, err)
		require.NotNil(t, res.Error)
		assert.Equal(t, 1, res.Error.Code)
		assert.Equal(t, "unknown key", res.Error.Message)

		var remote *rpc.RemoteError
		require.ErrorAs(t, res.Err(), &remote)
		assert.Equal(t, 1, remote.Code)
		assert.Equal(t, "unknown key", remote.Message)
		assert.JSONEq(t, `{"stack":[]}`, string(remote.Data))
	})

	violations := map[string]string{
		"both result and error": `{"id":1,"result":1,"error":{"code":1,"message":"x"}}`,
		"neither":               `{"id":1}`,
		"missing id":            `{"result":1}`,
		"not an object":         `[1,2]`,
		"not json":              `hello`,
		"string id":             `{"id":"1","result":1}`,
	}
	for name, frame := range violations {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := rpc.DecodeResponse([]byte(frame))
			require.Error(t, err)
			assert.ErrorIs(t, err, rpc.ErrProtocolViolation)
			assert.Equal(t, rpc.KindConnectionFailure, rpc.Classify(err))
		})
	}
}
