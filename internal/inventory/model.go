package inventory

// Line is a product quantity that moves in or out of stock.
type Line struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

// Change records a stock level before and after an adjustment.
type Change struct {
	Product string `json:"product"`
	Before  int    `json:"before"`
	After   int    `json:"after"`
}
