package domain

// Donation statuses. Exactly one holds at any time; 'expired' is terminal.
const (
	StatusAvailable = "available"
	StatusClaimed   = "claimed"
	StatusDelivered = "delivered"
	StatusExpired   = "expired"
)

// Donation is one unit of surplus-food offer posted by a business.
type Donation struct {
	ID                 string   `db:"id" json:"id"`
	ItemName           string   `db:"item_name" json:"itemName"`
	Description        string   `db:"description" json:"description,omitempty"`
	Quantity           int      `db:"quantity" json:"quantity"`
	Unit               string   `db:"unit" json:"unit"` // free-text token: 'kg', 'cans', 'bags', ...
	PricePerUnit       *float64 `db:"price_per_unit" json:"pricePerUnit,omitempty"`
	IsFree             bool     `db:"is_free" json:"isFree"`
	PhotoURL           string   `db:"photo_url" json:"photoUrl,omitempty"`
	PickupLocation     string   `db:"pickup_location" json:"pickupLocation"`
	PickupInstructions string   `db:"pickup_instructions" json:"pickupInstructions,omitempty"`
	PostedBy           string   `db:"posted_by" json:"postedBy"`
	ClaimedBy          *string  `db:"claimed_by" json:"claimedBy,omitempty"`
	Status             string   `db:"status" json:"status"`
	HandoffCode        string   `db:"handoff_code" json:"-"` // never serialized; compared case-insensitively
	FailedValidations  int      `db:"failed_validations" json:"-"`
	QualityRating      *int     `db:"quality_rating" json:"qualityRating,omitempty"`
	Version            int      `db:"version" json:"version"`
	PostedAt           string   `db:"posted_at" json:"postedAt"`
	ExpiresAt          string   `db:"expires_at" json:"expiresAt"`
	ClaimedAt          *string  `db:"claimed_at" json:"claimedAt,omitempty"`
	DeliveredAt        *string  `db:"delivered_at" json:"deliveredAt,omitempty"`
}
