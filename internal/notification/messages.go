package notification

import (
	"fmt"
	"html"
	"strings"
)

const (
	SubjectWinningBid = "Winning bid"
	SubjectInvoice    = "Invoice"
)

// DefaultSiteURL is linked from every message body
const DefaultSiteURL = "http://dropex.4th.host"

// WinningBidBody is the HTML sent to the winner of an item
func WinningBidBody(siteURL, itemName string) string {
	return fmt.Sprintf(
		`You are the high bidder on item <a href="%s">%s</a>`+
			`<p>You will be contacted with the location of the alley in which to deliver the briefcase full of cash</p>`,
		html.EscapeString(siteURL), html.EscapeString(itemName),
	)
}

// InvoiceBody is the HTML listing the items billed on an invoice
func InvoiceBody(siteURL string, itemNames []string) string {
	return fmt.Sprintf(`Here is your invoice for <a href="%s">%s</a>`,
		html.EscapeString(siteURL), html.EscapeString(strings.Join(itemNames, ", ")))
}
