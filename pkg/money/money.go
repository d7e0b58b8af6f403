package money

// Money is an amount in the currency's minor unit.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func New(amount int64, currency string) Money {
	return Money{Amount: amount, Currency: currency}
}

// Range is an inclusive price range in a single currency.
type Range struct {
	Start Money `json:"start"`
	Stop  Money `json:"stop"`
}
