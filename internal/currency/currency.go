package currency

// Code is an ISO 4217 currency code.
type Code string

// Supported display currencies. Conversion requests outside this set are
// rejected before any rate lookup.
const (
	USD Code = "USD"
	EUR Code = "EUR"
	GBP Code = "GBP"
	JPY Code = "JPY"
	CHF Code = "CHF"
	CAD Code = "CAD"
	AUD Code = "AUD"
	CNY Code = "CNY"
	INR Code = "INR"
	NGN Code = "NGN"
)

var supported = map[Code]struct{}{
	USD: {}, EUR: {}, GBP: {}, JPY: {}, CHF: {},
	CAD: {}, AUD: {}, CNY: {}, INR: {}, NGN: {},
}

// Supported reports whether code belongs to the supported set.
func Supported(code Code) bool {
	_, ok := supported[code]
	return ok
}

// Codes returns the supported set in a stable order.
func Codes() []Code {
	return []Code{USD, EUR, GBP, JPY, CHF, CAD, AUD, CNY, INR, NGN}
}
