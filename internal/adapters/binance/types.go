package binance

// DTOs raw de la API de Binance. Solo se usan dentro de este paquete.

// exchangeInfoResponse es la respuesta de GET /api/v3/exchangeInfo.
type exchangeInfoResponse struct {
	Symbols []symbolInfo `json:"symbols"`
}

type symbolInfo struct {
	Symbol  string         `json:"symbol"`
	Status  string         `json:"status"`
	Filters []symbolFilter `json:"filters"`
}

// symbolFilter cubre los filtros que usamos: LOT_SIZE, PRICE_FILTER y
// NOTIONAL (MIN_NOTIONAL en símbolos viejos).
type symbolFilter struct {
	FilterType  string `json:"filterType"`
	StepSize    string `json:"stepSize"`
	MinQty      string `json:"minQty"`
	TickSize    string `json:"tickSize"`
	MinNotional string `json:"minNotional"`
}

// orderResponse es la respuesta RESULT de POST /api/v3/order.
type orderResponse struct {
	Symbol              string `json:"symbol"`
	OrderID             int64  `json:"orderId"`
	ClientOrderID       string `json:"clientOrderId"`
	Status              string `json:"status"`
	ExecutedQty         string `json:"executedQty"`
	CummulativeQuoteQty string `json:"cummulativeQuoteQty"`
}

// combinedMessage es el envelope del combined stream.
// Data queda como map: bookTicker usa claves que solo difieren en mayúsculas
// ("b" precio, "B" cantidad) y no dependemos del matching de campos del decoder.
type combinedMessage struct {
	Stream string         `json:"stream"`
	Data   map[string]any `json:"data"`
}
