package leads

// Delivery methods reported to the client after a capture or resend.
const (
	DeliverySent           = "sent"
	DeliveryMailtoFallback = "mailto_fallback"
)

// Delivery is the outcome of handing a download link to the email collaborator.
type Delivery struct {
	Method     string `json:"method"`
	Success    bool   `json:"success"`
	MessageID  string `json:"messageId,omitempty"`
	MailtoLink string `json:"mailtoLink,omitempty"`
	Recipient  string `json:"recipient"`
	Error      string `json:"error,omitempty"`
}
