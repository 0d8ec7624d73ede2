package mailer

import (
	"fmt"
	"strings"
	"time"
)

// OrderSummary carries the order data a confirmation email needs.
type OrderSummary struct {
	Reference  string
	FirstName  string
	LastName   string
	Items      []OrderLine
	Subtotal   float64
	Shipping   float64
	Tax        float64
	Total      float64
	Address    string
	City       string
	Province   string
	PostalCode string
	Country    string
}

// OrderLine is a single purchased artwork in the summary.
type OrderLine struct {
	Title      string
	ArtistName string
	Price      float64
	Quantity   int
}

// VerificationEmail builds the signup verification message.
func VerificationEmail(firstName, code string) (subject, htmlBody, textBody string) {
	subject = "Verify Your Email - Camps Bay Art Gallery"
	htmlBody = fmt.Sprintf(
		"<p>Hello %s,</p><p>Your verification code is: <strong>%s</strong></p>"+
			"<p>Enter this code to activate your account. The code expires in 15 minutes.</p>"+
			"<p>Camps Bay Gallery Team</p>",
		firstName, code)
	textBody = fmt.Sprintf(
		"Hello %s,\n\nYour verification code is: %s\n\n"+
			"Enter this code to activate your account.\nCode expires in 15 minutes.\n\n"+
			"Camps Bay Gallery Team\n",
		firstName, code)
	return subject, htmlBody, textBody
}

// PasswordResetEmail builds the password reset message.
func PasswordResetEmail(firstName, code string) (subject, htmlBody, textBody string) {
	subject = "Password Reset - Camps Bay Art Gallery"
	htmlBody = fmt.Sprintf(
		"<p>Hello %s,</p><p>Your password reset code is: <strong>%s</strong></p>"+
			"<p>Enter this code to reset your password. The code expires in 15 minutes.</p>"+
			"<p>Camps Bay Gallery Team</p>",
		firstName, code)
	textBody = fmt.Sprintf(
		"Hello %s,\n\nYour password reset code is: %s\n\n"+
			"Enter this code to reset your password.\nCode expires in 15 minutes.\n\n"+
			"Camps Bay Gallery Team\n",
		firstName, code)
	return subject, htmlBody, textBody
}

// OrderConfirmationEmail builds the settlement confirmation message.
func OrderConfirmationEmail(order OrderSummary, placedAt time.Time) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("Order Confirmation #%s - Camps Bay Gallery", order.Reference)

	var items strings.Builder
	var htmlItems strings.Builder
	for _, item := range order.Items {
		fmt.Fprintf(&items, "- %s by %s: R %.2f (Qty: %d)\n",
			item.Title, item.ArtistName, item.Price, item.Quantity)
		fmt.Fprintf(&htmlItems, "<li>%s by %s: R %.2f (Qty: %d)</li>",
			item.Title, item.ArtistName, item.Price, item.Quantity)
	}

	htmlBody = fmt.Sprintf(
		"<p>Thank you for your order #%s at Camps Bay Gallery!</p>"+
			"<p>Date: %s</p>"+
			"<ul>%s</ul>"+
			"<p>Subtotal: R %.2f<br>Shipping: R %.2f<br>Tax (15%%): R %.2f<br><strong>Total: R %.2f</strong></p>"+
			"<p>Shipping to:<br>%s %s<br>%s<br>%s, %s %s<br>%s</p>"+
			"<p>These artworks have been marked as sold and will remain visible on our website. "+
			"We will contact you within 24 hours regarding shipping details.</p>"+
			"<p>Warm regards,<br>The Camps Bay Gallery Team</p>",
		order.Reference, placedAt.Format("January 2, 2006"), htmlItems.String(),
		order.Subtotal, order.Shipping, order.Tax, order.Total,
		order.FirstName, order.LastName, order.Address, order.City, order.Province,
		order.PostalCode, order.Country)

	textBody = fmt.Sprintf(
		"Thank you for your order #%s at Camps Bay Gallery!\n\n"+
			"Order Number: %s\nDate: %s\n\n"+
			"Items Purchased (Now Marked as Sold):\n%s\n"+
			"Subtotal: R %.2f\nShipping: R %.2f\nTax (15%%): R %.2f\nTotal: R %.2f\n\n"+
			"Shipping Address:\n%s %s\n%s\n%s, %s %s\n%s\n\n"+
			"Thank you for supporting local artists!\n\n"+
			"Warm regards,\nThe Camps Bay Gallery Team\n",
		order.Reference, order.Reference, placedAt.Format("January 2, 2006"),
		items.String(),
		order.Subtotal, order.Shipping, order.Tax, order.Total,
		order.FirstName, order.LastName, order.Address, order.City, order.Province,
		order.PostalCode, order.Country)

	return subject, htmlBody, textBody
}
