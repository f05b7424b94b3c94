package max

// depthResponse is the wire shape of GET /api/v3/depth. Price levels arrive
// as [price, amount] string pairs.
type depthResponse struct {
	Timestamp         int64      `json:"timestamp"`
	LastUpdateVersion int64      `json:"last_update_version"`
	LastUpdateID      int64      `json:"last_update_id"`
	Asks              [][]string `json:"asks"`
	Bids              [][]string `json:"bids"`
}

// walletBalanceItem is one entry of GET /api/v3/wallet/spot/accounts.
// Balance is the available amount; locked and staked funds are reported
// separately and are not spendable.
type walletBalanceItem struct {
	Currency string `json:"currency"`
	Balance  string `json:"balance"`
	Locked   string `json:"locked"`
	Staked   string `json:"staked"`
}

// orderDetail is the wire shape shared by order placement and order queries.
type orderDetail struct {
	ID              int64  `json:"id"`
	WalletType      string `json:"wallet_type"`
	Market          string `json:"market"`
	ClientOID       string `json:"client_oid"`
	Side            string `json:"side"`
	State           string `json:"state"`
	OrdType         string `json:"ord_type"`
	Price           string `json:"price"`
	AvgPrice        string `json:"avg_price"`
	Volume          string `json:"volume"`
	RemainingVolume string `json:"remaining_volume"`
	ExecutedVolume  string `json:"executed_volume"`
	TradesCount     int    `json:"trades_count"`
	CreatedAt       int64  `json:"created_at"`
	UpdatedAt       int64  `json:"updated_at"`
}
