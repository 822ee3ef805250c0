package steem

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/steemkit/steembridge/pkg/rpc"
)

// ErrInvalidTransaction is returned when a transaction to broadcast is not JSON.
var ErrInvalidTransaction = errors.New("transaction is not valid JSON")

// GetAccountCount returns the number of accounts on the chain.
func (c *Client) GetAccountCount(ctx context.Context) (uint64, error) {
	return rpc.InvokeOne[uint64](ctx, c, rpc.DatabaseAPI, rpc.GetAccountCount)
}

// GetAccountHistory returns up to limit history entries of account, ending at
// sequence number from. A from of -1 starts at the newest entry.
func (c *Client) GetAccountHistory(ctx context.Context, account string, from int64, limit uint32) ([]AccountActivity, error) {
	return rpc.Invoke[AccountActivity](ctx, c, rpc.DatabaseAPI, rpc.GetAccountHistory, rpc.ShapeArray, account, from, limit)
}

// GetAccountVotes returns every vote cast by voter.
func (c *Client) GetAccountVotes(ctx context.Context, voter string) ([]AccountVote, error) {
	return rpc.Invoke[AccountVote](ctx, c, rpc.DatabaseAPI, rpc.GetAccountVotes, rpc.ShapeArray, voter)
}

func (c *Client) GetWitnessCount(ctx context.Context) (uint64, error) {
	return rpc.InvokeOne[uint64](ctx, c, rpc.DatabaseAPI, rpc.GetWitnessCount)
}

// GetMinerQueue returns the accounts queued to produce proof-of-work blocks.
func (c *Client) GetMinerQueue(ctx context.Context) ([]string, error) {
	return rpc.Invoke[string](ctx, c, rpc.DatabaseAPI, rpc.GetMinerQueue, rpc.ShapeArray)
}

// GetConfig returns the compile-time constants of the node.
func (c *Client) GetConfig(ctx context.Context) (map[string]any, error) {
	return rpc.InvokeOne[map[string]any](ctx, c, rpc.DatabaseAPI, rpc.GetConfig)
}

func (c *Client) GetVersion(ctx context.Context) (Version, error) {
	return rpc.InvokeOne[Version](ctx, c, rpc.LoginAPI, rpc.GetVersion)
}

// GetAPIByName returns the numeric id of api, or nil if the node does not
// publish it.
func (c *Client) GetAPIByName(ctx context.Context, api rpc.SubAPI) (*uint32, error) {
	return probeAPI(ctx, c, api)
}

// GetTrendingTags returns up to limit tags, starting after afterTag.
func (c *Client) GetTrendingTags(ctx context.Context, afterTag string, limit uint32) ([]TrendingTag, error) {
	return rpc.Invoke[TrendingTag](ctx, c, rpc.DatabaseAPI, rpc.GetTrendingTags, rpc.ShapeArray, afterTag, limit)
}

func (c *Client) GetHardforkVersion(ctx context.Context) (string, error) {
	return rpc.InvokeOne[string](ctx, c, rpc.DatabaseAPI, rpc.GetHardforkVersion)
}

func (c *Client) GetWitnessSchedule(ctx context.Context) (WitnessSchedule, error) {
	return rpc.InvokeOne[WitnessSchedule](ctx, c, rpc.DatabaseAPI, rpc.GetWitnessSchedule)
}

// LookupAccounts returns up to limit account names starting at lowerBound.
func (c *Client) LookupAccounts(ctx context.Context, lowerBound string, limit uint32) ([]string, error) {
	return rpc.Invoke[string](ctx, c, rpc.DatabaseAPI, rpc.LookupAccounts, rpc.ShapeArray, lowerBound, limit)
}

// LookupWitnessAccounts returns up to limit witness names starting at lowerBound.
func (c *Client) LookupWitnessAccounts(ctx context.Context, lowerBound string, limit uint32) ([]string, error) {
	return rpc.Invoke[string](ctx, c, rpc.DatabaseAPI, rpc.LookupWitnessAccounts, rpc.ShapeArray, lowerBound, limit)
}

func (c *Client) GetDynamicGlobalProperties(ctx context.Context) (GlobalProperties, error) {
	return rpc.InvokeOne[GlobalProperties](ctx, c, rpc.DatabaseAPI, rpc.GetDynamicGlobalProperties)
}

func (c *Client) GetChainProperties(ctx context.Context) (ChainProperties, error) {
	return rpc.InvokeOne[ChainProperties](ctx, c, rpc.DatabaseAPI, rpc.GetChainProperties)
}

func (c *Client) GetCurrentMedianHistoryPrice(ctx context.Context) (Price, error) {
	return rpc.InvokeOne[Price](ctx, c, rpc.DatabaseAPI, rpc.GetCurrentMedianHistoryPrice)
}

func (c *Client) GetContent(ctx context.Context, author, permlink string) (Discussion, error) {
	return rpc.InvokeOne[Discussion](ctx, c, rpc.DatabaseAPI, rpc.GetContent, author, permlink)
}

func (c *Client) GetContentReplies(ctx context.Context, author, permlink string) ([]Discussion, error) {
	return rpc.Invoke[Discussion](ctx, c, rpc.DatabaseAPI, rpc.GetContentReplies, rpc.ShapeArray, author, permlink)
}

func (c *Client) GetActiveVotes(ctx context.Context, author, permlink string) ([]ActiveVote, error) {
	return rpc.Invoke[ActiveVote](ctx, c, rpc.DatabaseAPI, rpc.GetActiveVotes, rpc.ShapeArray, author, permlink)
}

// GetDiscussionsBy returns discussions ordered by sort. The query travels as
// a single object parameter.
func (c *Client) GetDiscussionsBy(ctx context.Context, sort DiscussionSort, query DiscussionQuery) ([]Discussion, error) {
	method, err := sort.Method()
	if err != nil {
		return nil, err
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}
	return rpc.Invoke[Discussion](ctx, c, rpc.DatabaseAPI, method, rpc.ShapeArray, query)
}

func (c *Client) GetBlockHeader(ctx context.Context, blockNum uint32) (*BlockHeader, error) {
	return rpc.InvokeOne[*BlockHeader](ctx, c, rpc.DatabaseAPI, rpc.GetBlockHeader, blockNum)
}

// GetBlock returns the block at blockNum, or nil if it does not exist yet.
func (c *Client) GetBlock(ctx context.Context, blockNum uint32) (*Block, error) {
	return rpc.InvokeOne[*Block](ctx, c, rpc.DatabaseAPI, rpc.GetBlock, blockNum)
}

// GetConversationRequests returns the pending SBD to STEEM conversions of
// account, undecoded.
func (c *Client) GetConversationRequests(ctx context.Context, account string) (json.RawMessage, error) {
	return rpc.InvokeRaw(ctx, c, rpc.DatabaseAPI, rpc.GetConversations, account)
}

func (c *Client) GetFeedHistory(ctx context.Context) (FeedHistory, error) {
	return rpc.InvokeOne[FeedHistory](ctx, c, rpc.DatabaseAPI, rpc.GetFeedHistory)
}

// GetNextScheduledHardfork returns the next hardfork schedule, undecoded.
func (c *Client) GetNextScheduledHardfork(ctx context.Context) (json.RawMessage, error) {
	return rpc.InvokeRaw(ctx, c, rpc.DatabaseAPI, rpc.GetNextHardfork)
}

func (c *Client) GetOpenOrders(ctx context.Context, account string) ([]UserOrder, error) {
	return rpc.Invoke[UserOrder](ctx, c, rpc.DatabaseAPI, rpc.GetOpenOrders, rpc.ShapeArray, account)
}

func (c *Client) GetOrderBook(ctx context.Context, limit uint32) (OrderBook, error) {
	return rpc.InvokeOne[OrderBook](ctx, c, rpc.DatabaseAPI, rpc.GetOrderBook, limit)
}

// GetActiveWitnesses returns the witnesses of the current round.
func (c *Client) GetActiveWitnesses(ctx context.Context) ([]string, error) {
	return rpc.Invoke[string](ctx, c, rpc.DatabaseAPI, rpc.GetActiveWitnesses, rpc.ShapeArray)
}

// GetKeyReferences returns, for every public key, the accounts referencing
// it. The keys travel as one array parameter.
func (c *Client) GetKeyReferences(ctx context.Context, publicKeys []string) ([][]string, error) {
	if len(publicKeys) == 0 {
		return [][]string{}, nil
	}
	return rpc.Invoke[[]string](ctx, c, rpc.AccountByKeyAPI, rpc.GetKeyReferences, rpc.ShapeArray, publicKeys)
}

// BroadcastTransaction submits a signed transaction without waiting for it
// to be included in a block.
func (c *Client) BroadcastTransaction(ctx context.Context, trx json.RawMessage) error {
	if !json.Valid(trx) {
		return ErrInvalidTransaction
	}
	_, err := rpc.InvokeRaw(ctx, c, rpc.NetworkBroadcastAPI, rpc.BroadcastTransaction, trx)
	return err
}

// BroadcastTransactionSynchronous submits a signed transaction and returns
// the node's confirmation once it is included in a block.
func (c *Client) BroadcastTransactionSynchronous(ctx context.Context, trx json.RawMessage) (json.RawMessage, error) {
	if !json.Valid(trx) {
		return nil, ErrInvalidTransaction
	}
	return rpc.InvokeRaw(ctx, c, rpc.NetworkBroadcastAPI, rpc.BroadcastTransactionSynchronous, trx)
}
