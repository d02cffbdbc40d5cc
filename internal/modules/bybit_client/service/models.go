package service

type tickersResult struct {
	Category string `json:"category"`
	List     []struct {
		Symbol    string `json:"symbol"`
		LastPrice string `json:"lastPrice"`
		MarkPrice string `json:"markPrice"`
	} `json:"list"`
}

type walletBalanceResult struct {
	List []struct {
		AccountType           string `json:"accountType"`
		TotalEquity           string `json:"totalEquity"`
		TotalAvailableBalance string `json:"totalAvailableBalance"`
		TotalInitialMargin    string `json:"totalInitialMargin"`
		Coin                  []struct {
			Coin                string `json:"coin"`
			WalletBalance       string `json:"walletBalance"`
			AvailableToTrade    string `json:"availableToTrade"`
			AvailableToWithdraw string `json:"availableToWithdraw"`
		} `json:"coin"`
	} `json:"list"`
}

type positionListResult struct {
	Category string `json:"category"`
	List     []struct {
		Symbol      string `json:"symbol"`
		Side        string `json:"side"` // Buy / Sell / "" (None)
		Size        string `json:"size"`
		PositionIdx int    `json:"positionIdx"`
		AvgPrice    string `json:"avgPrice"`
	} `json:"list"`
}

type instrumentsResult struct {
	Category string       `json:"category"`
	List     []Instrument `json:"list"`
}

type Instrument struct {
	Symbol        string `json:"symbol"`
	Status        string `json:"status"`
	SettleCoin    string `json:"settleCoin"`
	LotSizeFilter struct {
		QtyStep        string `json:"qtyStep"`
		MinOrderQty    string `json:"minOrderQty"`
		MaxMktOrderQty string `json:"maxMktOrderQty"`
	} `json:"lotSizeFilter"`
}

type createOrderRequest struct {
	Category    string `json:"category"`
	Symbol      string `json:"symbol"`
	Side        string `json:"side"`
	OrderType   string `json:"orderType"`
	Qty         string `json:"qty"`
	ReduceOnly  bool   `json:"reduceOnly"`
	PositionIdx int    `json:"positionIdx"`
	OrderLinkID string `json:"orderLinkId"`
}

type createOrderResult struct {
	OrderID     string `json:"orderId"`
	OrderLinkID string `json:"orderLinkId"`
}
