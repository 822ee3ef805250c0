package rpc

import "slices"

// SubAPI names a capability group published by a node. Each one is enabled
// or disabled independently by the node configuration.
type SubAPI string

const (
	DatabaseAPI         SubAPI = "database_api"
	LoginAPI            SubAPI = "login_api"
	NetworkBroadcastAPI SubAPI = "network_broadcast_api"
	FollowAPI           SubAPI = "follow_api"
	MarketHistoryAPI    SubAPI = "market_history_api"
	AccountByKeyAPI     SubAPI = "account_by_key_api"
)

// KnownSubAPIs lists every sub-API probed during capability discovery, in
// probing order.
var KnownSubAPIs = []SubAPI{
	DatabaseAPI,
	LoginAPI,
	NetworkBroadcastAPI,
	FollowAPI,
	MarketHistoryAPI,
	AccountByKeyAPI,
}

func (a SubAPI) String() string {
	return string(a)
}

// IsKnown reports whether a is one of KnownSubAPIs.
func (a SubAPI) IsKnown() bool {
	return slices.Contains(KnownSubAPIs, a)
}

// Method is the name of a remote procedure inside a sub-API.
type Method string

const (
	LoginMethod      Method = "login"
	GetAPIByName     Method = "get_api_by_name"
	GetVersion       Method = "get_version"
	GetBlockHeader   Method = "get_block_header"
	GetBlock         Method = "get_block"
	GetFeedHistory   Method = "get_feed_history"
	GetOpenOrders    Method = "get_open_orders"
	GetOrderBook     Method = "get_order_book"
	GetNextHardfork  Method = "get_next_scheduled_hardfork"
	GetConversations Method = "get_conversation_requests"

	GetAccountCount              Method = "get_account_count"
	GetAccountHistory            Method = "get_account_history"
	GetAccountVotes              Method = "get_account_votes"
	GetWitnessCount              Method = "get_witness_count"
	GetMinerQueue                Method = "get_miner_queue"
	GetConfig                    Method = "get_config"
	GetTrendingTags              Method = "get_trending_tags"
	GetHardforkVersion           Method = "get_hardfork_version"
	GetWitnessSchedule           Method = "get_witness_schedule"
	LookupAccounts               Method = "lookup_accounts"
	LookupWitnessAccounts        Method = "lookup_witness_accounts"
	GetDynamicGlobalProperties   Method = "get_dynamic_global_properties"
	GetChainProperties           Method = "get_chain_properties"
	GetCurrentMedianHistoryPrice Method = "get_current_median_history_price"
	GetContent                   Method = "get_content"
	GetContentReplies            Method = "get_content_replies"
	GetActiveVotes               Method = "get_active_votes"
	GetActiveWitnesses           Method = "get_active_witnesses"
	GetDiscussionsByTrending     Method = "get_discussions_by_trending"
	GetDiscussionsByCreated      Method = "get_discussions_by_created"
	GetDiscussionsByActive       Method = "get_discussions_by_active"
	GetDiscussionsByCashout      Method = "get_discussions_by_cashout"
	GetDiscussionsByPayout       Method = "get_discussions_by_payout"
	GetDiscussionsByVotes        Method = "get_discussions_by_votes"
	GetDiscussionsByChildren     Method = "get_discussions_by_children"
	GetDiscussionsByHot          Method = "get_discussions_by_hot"
	GetDiscussionsByFeed         Method = "get_discussions_by_feed"
	GetDiscussionsByBlog         Method = "get_discussions_by_blog"
	GetDiscussionsByComments     Method = "get_discussions_by_comments"
	GetDiscussionsByPromoted     Method = "get_discussions_by_promoted"

	GetKeyReferences Method = "get_key_references"

	BroadcastTransaction            Method = "broadcast_transaction"
	BroadcastTransactionSynchronous Method = "broadcast_transaction_synchronous"
)

func (m Method) String() string {
	return string(m)
}

// methodAPIs maps each catalogued method to the sub-API serving it.
var methodAPIs = map[Method]SubAPI{
	LoginMethod:      LoginAPI,
	GetAPIByName:     LoginAPI,
	GetVersion:       LoginAPI,
	GetKeyReferences: AccountByKeyAPI,

	BroadcastTransaction:            NetworkBroadcastAPI,
	BroadcastTransactionSynchronous: NetworkBroadcastAPI,

	GetBlockHeader:               DatabaseAPI,
	GetBlock:                     DatabaseAPI,
	GetFeedHistory:               DatabaseAPI,
	GetOpenOrders:                DatabaseAPI,
	GetOrderBook:                 DatabaseAPI,
	GetNextHardfork:              DatabaseAPI,
	GetConversations:             DatabaseAPI,
	GetAccountCount:              DatabaseAPI,
	GetAccountHistory:            DatabaseAPI,
	GetAccountVotes:              DatabaseAPI,
	GetWitnessCount:              DatabaseAPI,
	GetMinerQueue:                DatabaseAPI,
	GetConfig:                    DatabaseAPI,
	GetTrendingTags:              DatabaseAPI,
	GetHardforkVersion:           DatabaseAPI,
	GetWitnessSchedule:           DatabaseAPI,
	LookupAccounts:               DatabaseAPI,
	LookupWitnessAccounts:        DatabaseAPI,
	GetDynamicGlobalProperties:   DatabaseAPI,
	GetChainProperties:           DatabaseAPI,
	GetCurrentMedianHistoryPrice: DatabaseAPI,
	GetContent:                   DatabaseAPI,
	GetContentReplies:            DatabaseAPI,
	GetActiveVotes:               DatabaseAPI,
	GetActiveWitnesses:           DatabaseAPI,
	GetDiscussionsByTrending:     DatabaseAPI,
	GetDiscussionsByCreated:      DatabaseAPI,
	GetDiscussionsByActive:       DatabaseAPI,
	GetDiscussionsByCashout:      DatabaseAPI,
	GetDiscussionsByPayout:       DatabaseAPI,
	GetDiscussionsByVotes:        DatabaseAPI,
	GetDiscussionsByChildren:     DatabaseAPI,
	GetDiscussionsByHot:          DatabaseAPI,
	GetDiscussionsByFeed:         DatabaseAPI,
	GetDiscussionsByBlog:         DatabaseAPI,
	GetDiscussionsByComments:     DatabaseAPI,
	GetDiscussionsByPromoted:     DatabaseAPI,
}

// API returns the sub-API serving m, if m is catalogued.
func (m Method) API() (SubAPI, bool) {
	api, ok := methodAPIs[m]
	return api, ok
}

// MethodsOf returns the catalogued methods of api, sorted by name.
func MethodsOf(api SubAPI) []Method {
	var out []Method
	for m, a := range methodAPIs {
		if a == api {
			out = append(out, m)
		}
	}
	slices.Sort(out)
	return out
}
