package steem

import (
	"context"
	"fmt"

	"github.com/steemkit/steembridge/pkg/rpc"
)

// Operation tags of the records decoded by Operation.
const (
	OpVote              = "vote"
	OpComment           = "comment"
	OpTransfer          = "transfer"
	OpTransferToVesting = "transfer_to_vesting"
	OpCustomJSON        = "custom_json"
	OpCurationReward    = "curation_reward"
	OpAuthorReward      = "author_reward"
)

type VoteOperation struct {
	Voter    string `json:"voter"`
	Author   string `json:"author"`
	Permlink string `json:"permlink"`
	Weight   int16  `json:"weight"`
}

type CommentOperation struct {
	ParentAuthor   string `json:"parent_author"`
	ParentPermlink string `json:"parent_permlink"`
	Author         string `json:"author"`
	Permlink       string `json:"permlink"`
	Title          string `json:"title"`
	Body           string `json:"body"`
	JSONMetadata   string `json:"json_metadata"`
}

type TransferOperation struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount Asset  `json:"amount"`
	Memo   string `json:"memo"`
}

type TransferToVestingOperation struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount Asset  `json:"amount"`
}

type CustomJSONOperation struct {
	RequiredAuths        []string `json:"required_auths"`
	RequiredPostingAuths []string `json:"required_posting_auths"`
	ID                   string   `json:"id"`
	JSON                 string   `json:"json"`
}

type CurationRewardOperation struct {
	Curator         string `json:"curator"`
	Reward          Asset  `json:"reward"`
	CommentAuthor   string `json:"comment_author"`
	CommentPermlink string `json:"comment_permlink"`
}

type AuthorRewardOperation struct {
	Author        string `json:"author"`
	Permlink      string `json:"permlink"`
	SBDPayout     Asset  `json:"sbd_payout"`
	SteemPayout   Asset  `json:"steem_payout"`
	VestingPayout Asset  `json:"vesting_payout"`
}

// Operation decodes a tagged operation into its typed form. Unknown tags are
// returned as the untouched Variant. Fields whose values do not fit the typed
// form are left zero and logged at debug on the context logger.
func Operation(ctx context.Context, v rpc.Variant) (any, error) {
	var target any
	switch v.Tag {
	case OpVote:
		target = &VoteOperation{}
	case OpComment:
		target = &CommentOperation{}
	case OpTransfer:
		target = &TransferOperation{}
	case OpTransferToVesting:
		target = &TransferToVestingOperation{}
	case OpCustomJSON:
		target = &CustomJSONOperation{}
	case OpCurationReward:
		target = &CurationRewardOperation{}
	case OpAuthorReward:
		target = &AuthorRewardOperation{}
	default:
		return v, nil
	}

	if err := v.As(ctx, target); err != nil {
		return nil, fmt.Errorf("decoding %s operation: %w", v.Tag, err)
	}
	return target, nil
}
