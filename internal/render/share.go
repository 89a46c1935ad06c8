package render

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/andy/billbook/internal/domain"
)

const whatsAppBase = "https://wa.me/"

// WhatsAppMessage is the order confirmation sent to the client
func WhatsAppMessage(inv *domain.Invoice, settings *domain.Settings) string {
	currency := settings.CurrencySymbol()

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", inv.ClientName)
	b.WriteString("Your order is confirmed! ✅\n\n")
	fmt.Fprintf(&b, "📋 Invoice No: #%s\n", inv.InvoiceNumber)
	fmt.Fprintf(&b, "📅 Date: %s\n\n", inv.CreatedAt.Local().Format(DateLayout))
	b.WriteString("Items:\n")
	for _, item := range inv.Items {
		fmt.Fprintf(&b, "• %s x%d = %s\n", item.Title, item.Quantity, FormatMoney(currency, item.Amount()))
	}
	fmt.Fprintf(&b, "\n💰 Total: %s\n\n", FormatMoney(currency, inv.Total))
	b.WriteString("Thank you for your business!\n")
	fmt.Fprintf(&b, "— %s", settings.DisplayName())

	return b.String()
}

// WhatsAppLink builds a wa.me deep link that opens a chat with the
// client's number and the message prefilled
func WhatsAppLink(inv *domain.Invoice, settings *domain.Settings) string {
	phone := domain.PhoneDigits(inv.ClientPhone)
	return whatsAppBase + phone + "?text=" + encodeComponent(WhatsAppMessage(inv, settings))
}

// encodeComponent percent-encodes s for a query value, spaces as %20
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
