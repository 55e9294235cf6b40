package domain

// Message senders. 'system' marks automated lifecycle annotations.
const (
	SenderBusiness     = "business"
	SenderOrganization = "organization"
	SenderSystem       = "system"
)

// Message is one entry in a donation's append-only thread.
type Message struct {
	ID         string `db:"id" json:"id"`
	DonationID string `db:"donation_id" json:"-"`
	Sender     string `db:"sender" json:"sender"`
	Body       string `db:"body" json:"body"`
	CreatedAt  string `db:"created_at" json:"createdAt"`
}
