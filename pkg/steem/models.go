package steem

import (
	"encoding/json"

	"github.com/steemkit/steembridge/pkg/rpc"
)

// Version is the build information returned by get_version.
type Version struct {
	BlockchainVersion string `json:"blockchain_version"`
	SteemRevision     string `json:"steem_revision"`
	FCRevision        string `json:"fc_revision"`
}

// GlobalProperties is the chain state returned by get_dynamic_global_properties.
type GlobalProperties struct {
	ID                       uint64      `json:"id"`
	HeadBlockNumber          uint32      `json:"head_block_number"`
	HeadBlockID              string      `json:"head_block_id"`
	Time                     string      `json:"time"`
	CurrentWitness           string      `json:"current_witness"`
	TotalPow                 uint64      `json:"total_pow"`
	NumPowWitnesses          uint32      `json:"num_pow_witnesses"`
	VirtualSupply            Asset       `json:"virtual_supply"`
	CurrentSupply            Asset       `json:"current_supply"`
	ConfidentialSupply       Asset       `json:"confidential_supply"`
	CurrentSBDSupply         Asset       `json:"current_sbd_supply"`
	ConfidentialSBDSupply    Asset       `json:"confidential_sbd_supply"`
	TotalVestingFundSteem    Asset       `json:"total_vesting_fund_steem"`
	TotalVestingShares       Asset       `json:"total_vesting_shares"`
	TotalRewardFundSteem     Asset       `json:"total_reward_fund_steem"`
	TotalRewardShares2       json.Number `json:"total_reward_shares2"`
	SBDInterestRate          int32       `json:"sbd_interest_rate"`
	SBDPrintRate             int32       `json:"sbd_print_rate"`
	AverageBlockSize         uint32      `json:"average_block_size"`
	MaximumBlockSize         uint32      `json:"maximum_block_size"`
	CurrentAslot             uint64      `json:"current_aslot"`
	RecentSlotsFilled        json.Number `json:"recent_slots_filled"`
	ParticipationCount       uint32      `json:"participation_count"`
	LastIrreversibleBlockNum uint32      `json:"last_irreversible_block_num"`
	MaxVirtualBandwidth      json.Number `json:"max_virtual_bandwidth"`
	CurrentReserveRatio      uint64      `json:"current_reserve_ratio"`
	VoteRegenerationPerDay   uint32      `json:"vote_regeneration_per_day"`
}

// ChainProperties are the witness-voted chain parameters.
type ChainProperties struct {
	AccountCreationFee Asset  `json:"account_creation_fee"`
	MaximumBlockSize   uint32 `json:"maximum_block_size"`
	SBDInterestRate    uint16 `json:"sbd_interest_rate"`
}

// FeedHistory is the price feed history returned by get_feed_history.
type FeedHistory struct {
	ID                   uint64  `json:"id"`
	CurrentMedianHistory Price   `json:"current_median_history"`
	PriceHistory         []Price `json:"price_history"`
}

// AccountVote is a vote cast by an account, as returned by get_account_votes.
type AccountVote struct {
	Authorperm string      `json:"authorperm"`
	Weight     json.Number `json:"weight"`
	Rshares    json.Number `json:"rshares"`
	Percent    int16       `json:"percent"`
	Time       string      `json:"time"`
}

// ActiveVote is a vote on a post, as returned by get_active_votes.
type ActiveVote struct {
	Voter      string      `json:"voter"`
	Weight     json.Number `json:"weight"`
	Rshares    json.Number `json:"rshares"`
	Percent    int16       `json:"percent"`
	Reputation json.Number `json:"reputation"`
	Time       string      `json:"time"`
}

// TrendingTag is an entry of get_trending_tags.
type TrendingTag struct {
	Name         string      `json:"name"`
	TotalPayouts Asset       `json:"total_payouts"`
	NetVotes     int32       `json:"net_votes"`
	TopPosts     uint32      `json:"top_posts"`
	Comments     uint32      `json:"comments"`
	Trending     json.Number `json:"trending"`
}

// WitnessSchedule is the current witness round returned by get_witness_schedule.
type WitnessSchedule struct {
	ID                    uint64          `json:"id"`
	CurrentVirtualTime    json.Number     `json:"current_virtual_time"`
	NextShuffleBlockNum   uint32          `json:"next_shuffle_block_num"`
	CurrentShuffled       json.RawMessage `json:"current_shuffled_witnesses"`
	NumScheduledWitnesses uint8           `json:"num_scheduled_witnesses"`
	MedianProps           ChainProperties `json:"median_props"`
	MajorityVersion       string          `json:"majority_version"`
}

// Discussion is a post or comment.
type Discussion struct {
	ID                 uint64       `json:"id"`
	Author             string       `json:"author"`
	Permlink           string       `json:"permlink"`
	Category           string       `json:"category"`
	ParentAuthor       string       `json:"parent_author"`
	ParentPermlink     string       `json:"parent_permlink"`
	Title              string       `json:"title"`
	Body               string       `json:"body"`
	JSONMetadata       string       `json:"json_metadata"`
	Created            string       `json:"created"`
	LastUpdate         string       `json:"last_update"`
	Depth              uint16       `json:"depth"`
	Children           uint32       `json:"children"`
	NetVotes           int32        `json:"net_votes"`
	TotalPayoutValue   Asset        `json:"total_payout_value"`
	PendingPayoutValue Asset        `json:"pending_payout_value"`
	URL                string       `json:"url"`
	ActiveVotes        []ActiveVote `json:"active_votes"`
	Replies            []string     `json:"replies"`
}

// BlockHeader is returned by get_block_header.
type BlockHeader struct {
	Previous              string            `json:"previous"`
	Timestamp             string            `json:"timestamp"`
	Witness               string            `json:"witness"`
	TransactionMerkleRoot string            `json:"transaction_merkle_root"`
	Extensions            []json.RawMessage `json:"extensions"`
}

// Block is a signed block returned by get_block.
type Block struct {
	BlockHeader
	WitnessSignature string        `json:"witness_signature"`
	Transactions     []Transaction `json:"transactions"`
	BlockID          string        `json:"block_id"`
	SigningKey       string        `json:"signing_key"`
	TransactionIDs   []string      `json:"transaction_ids"`
}

// Transaction is a signed transaction inside a block.
type Transaction struct {
	RefBlockNum    uint16            `json:"ref_block_num"`
	RefBlockPrefix uint32            `json:"ref_block_prefix"`
	Expiration     string            `json:"expiration"`
	Operations     []rpc.Variant     `json:"operations"`
	Extensions     []json.RawMessage `json:"extensions"`
	Signatures     []string          `json:"signatures"`
}

// AppliedOperation is an account history record.
type AppliedOperation struct {
	TrxID      string      `json:"trx_id"`
	Block      uint32      `json:"block"`
	TrxInBlock uint32      `json:"trx_in_block"`
	OpInTrx    uint32      `json:"op_in_trx"`
	VirtualOp  uint64      `json:"virtual_op"`
	Timestamp  string      `json:"timestamp"`
	Op         rpc.Variant `json:"op"`
}

// AccountActivity is one entry of get_account_history, keyed by its sequence
// number in the account's history.
type AccountActivity = rpc.IndexedEntry[AppliedOperation]

// UserOrder is an open limit order of an account.
type UserOrder struct {
	ID         uint64      `json:"id"`
	Created    string      `json:"created"`
	Expiration string      `json:"expiration"`
	Seller     string      `json:"seller"`
	OrderID    uint32      `json:"orderid"`
	ForSale    json.Number `json:"for_sale"`
	SellPrice  Price       `json:"sell_price"`
	RealPrice  string      `json:"real_price"`
	Rewarded   bool        `json:"rewarded"`
}

// MarketOrder is one side entry of the internal market order book.
type MarketOrder struct {
	Created    string      `json:"created"`
	OrderPrice Price       `json:"order_price"`
	RealPrice  string      `json:"real_price"`
	Steem      json.Number `json:"steem"`
	SBD        json.Number `json:"sbd"`
}

// OrderBook is returned by get_order_book.
type OrderBook struct {
	Bids []MarketOrder `json:"bids"`
	Asks []MarketOrder `json:"asks"`
}
