package steem

import (
	"fmt"

	"github.com/steemkit/steembridge/pkg/rpc"
)

// DiscussionSort selects the ordering of GetDiscussionsBy.
type DiscussionSort string

const (
	SortTrending DiscussionSort = "trending"
	SortCreated  DiscussionSort = "created"
	SortActive   DiscussionSort = "active"
	SortCashout  DiscussionSort = "cashout"
	SortPayout   DiscussionSort = "payout"
	SortVotes    DiscussionSort = "votes"
	SortChildren DiscussionSort = "children"
	SortHot      DiscussionSort = "hot"
	SortFeed     DiscussionSort = "feed"
	SortBlog     DiscussionSort = "blog"
	SortComments DiscussionSort = "comments"
	SortPromoted DiscussionSort = "promoted"
)

var discussionMethods = map[DiscussionSort]rpc.Method{
	SortTrending: rpc.GetDiscussionsByTrending,
	SortCreated:  rpc.GetDiscussionsByCreated,
	SortActive:   rpc.GetDiscussionsByActive,
	SortCashout:  rpc.GetDiscussionsByCashout,
	SortPayout:   rpc.GetDiscussionsByPayout,
	SortVotes:    rpc.GetDiscussionsByVotes,
	SortChildren: rpc.GetDiscussionsByChildren,
	SortHot:      rpc.GetDiscussionsByHot,
	SortFeed:     rpc.GetDiscussionsByFeed,
	SortBlog:     rpc.GetDiscussionsByBlog,
	SortComments: rpc.GetDiscussionsByComments,
	SortPromoted: rpc.GetDiscussionsByPromoted,
}

// Method returns the remote method implementing s.
func (s DiscussionSort) Method() (rpc.Method, error) {
	method, ok := discussionMethods[s]
	if !ok {
		return "", fmt.Errorf("unknown discussion sort %q", s)
	}
	return method, nil
}

// DiscussionQuery is the single object parameter of the get_discussions_by_*
// methods.
type DiscussionQuery struct {
	Tag           string   `json:"tag"`
	Limit         uint32   `json:"limit" validate:"min=1,max=100"`
	FilterTags    []string `json:"filter_tags,omitempty"`
	SelectAuthors []string `json:"select_authors,omitempty"`
	SelectTags    []string `json:"select_tags,omitempty"`
	TruncateBody  uint32   `json:"truncate_body,omitempty"`
	StartAuthor   string   `json:"start_author,omitempty"`
	StartPermlink string   `json:"start_permlink,omitempty" validate:"required_with=StartAuthor"`
}

// Validate checks the query limits.
func (q DiscussionQuery) Validate() error {
	if err := getValidator().Struct(q); err != nil {
		return fmt.Errorf("invalid discussion query: %w", err)
	}
	return nil
}
