package model

// ChargeRequest is the client payload of a payment: price in major units,
// a title for the charge description and the card token from the client.
type ChargeRequest struct {
	Price float64 `json:"price"`
	Title string  `json:"title"`
	Token string  `json:"token"`
}
