package ledger

// PaymentMethod is how a sale was settled.
type PaymentMethod string

const (
	PaymentPix       PaymentMethod = "pix"
	PaymentCash      PaymentMethod = "cash"
	PaymentCard      PaymentMethod = "card"
	PaymentCreditTab PaymentMethod = "credit_tab" // "fiado": customer pays later
)

// PaymentMethods lists every accepted method, in display order.
var PaymentMethods = []PaymentMethod{PaymentPix, PaymentCash, PaymentCard, PaymentCreditTab}

// Valid reports whether m is one of the accepted methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentPix, PaymentCash, PaymentCard, PaymentCreditTab:
		return true
	}
	return false
}

// RequiresCustomer reports whether a sale with this method must carry a
// customer name. Credit-tab sales are unrecoverable without one.
func (m PaymentMethod) RequiresCustomer() bool {
	return m == PaymentCreditTab
}
