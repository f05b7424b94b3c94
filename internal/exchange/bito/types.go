package bito

// depthResponse is the wire shape of GET /order-book/<pair>. Levels arrive
// as [price, amount] string pairs.
type depthResponse struct {
	Timestamp int64      `json:"timestamp"`
	Asks      [][]string `json:"asks"`
	Bids      [][]string `json:"bids"`
}

// balanceResponse is the wire shape of GET /accounts/balance.
type balanceResponse struct {
	Data []balanceItem `json:"data"`
}

// balanceItem reports one currency's funds. Available excludes locked
// amounts and is the only figure the pipeline may spend.
type balanceItem struct {
	Currency  string `json:"currency"`
	Amount    string `json:"amount"`
	Available string `json:"available"`
	Locked    string `json:"locked"`
}

// orderRequest is the body of POST /orders/<pair>.
type orderRequest struct {
	Market string `json:"market"`
	Side   string `json:"side"`
	Volume string `json:"volume"`
	Price  string `json:"price"`
	Type   string `json:"type"`
	Nonce  int64  `json:"nonce"`
}

// orderDetail is the wire shape shared by order placement and
// GET /orders/<pair>/<id>.
type orderDetail struct {
	ID              int64  `json:"id"`
	Market          string `json:"market"`
	Side            string `json:"side"`
	State           string `json:"state"`
	Type            string `json:"type"`
	Price           string `json:"price"`
	AvgPrice        string `json:"avgPrice"`
	Volume          string `json:"volume"`
	RemainingVolume string `json:"remainingVolume"`
	ExecutedVolume  string `json:"executedVolume"`
	CreatedAt       int64  `json:"createdAt"`
	UpdatedAt       int64  `json:"updatedAt"`
}
