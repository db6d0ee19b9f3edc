package constants

// Static route constants
const (
	PublicRoute = "/"

	StripeWebhookRoute = "/webhook/stripe"
	PayPalWebhookRoute = "/webhook/paypal"

	CheckoutCompleteRoute = "/checkout/complete"
	CheckoutStatusRoute   = "/checkout/status/:session_id"

	DownloadRoute = "/download/:reference"
)
