package steem_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steemkit/steembridge/pkg/rpc"
	"github.com/steemkit/steembridge/pkg/steem"
)

func TestDiscussionSort_Method(t *testing.T) {
	t.Parallel()

	sorts := []steem.DiscussionSort{
		steem.SortTrending, steem.SortCreated, steem.SortActive, steem.SortCashout,
		steem.SortPayout, steem.SortVotes, steem.SortChildren, steem.SortHot,
		steem.SortFeed, steem.SortBlog, steem.SortComments, steem.SortPromoted,
	}
	for _, sort := range sorts {
		method, err := sort.Method()
		require.NoError(t, err, sort)
		assert.Equal(t, "get_discussions_by_"+string(sort), string(method))

		api, ok := method.API()
		assert.True(t, ok, method)
		assert.Equal(t, rpc.DatabaseAPI, api)
	}

	_, err := steem.DiscussionSort("sideways").Method()
	assert.ErrorContains(t, err, "unknown discussion sort")
}

func TestDiscussionQuery_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, steem.DiscussionQuery{Limit: 1}.Validate())
	assert.NoError(t, steem.DiscussionQuery{Limit: 100, StartAuthor: "alice", StartPermlink: "post"}.Validate())

	err := steem.DiscussionQuery{Limit: 101}.Validate()
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "invalid discussion query"))
	assert.Error(t, steem.DiscussionQuery{Limit: 0}.Validate())
	assert.Error(t, steem.DiscussionQuery{Limit: 10, StartAuthor: "alice"}.Validate())
}
