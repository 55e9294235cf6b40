package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"foodlink/internal/domain"
	"foodlink/internal/repos"
)

var (
	ErrNotFound     = errors.New("donation not found")
	ErrNotAvailable = errors.New("donation is not available")
	ErrExpired      = errors.New("donation has expired")
	ErrBadQuantity  = errors.New("requested quantity exceeds what is offered")
	ErrWrongRole    = errors.New("action not permitted for this role")
)

// sqliteTime is the format CURRENT_TIMESTAMP writes; all stored timestamps use it.
const sqliteTime = "2006-01-02 15:04:05"

type PostInput struct {
	ItemName           string
	Description        string
	Quantity           int
	Unit               string
	PricePerUnit       *float64 // nil means free
	PhotoURL           string
	PickupLocation     string
	PickupInstructions string
	HandoffCode        string // generated when empty
	ExpiresAt          time.Time
}

type DonationService struct {
	Donations *repos.DonationRepo
	Messages  *repos.MessageRepo
}

func NewDonationService(donations *repos.DonationRepo, messages *repos.MessageRepo) *DonationService {
	return &DonationService{Donations: donations, Messages: messages}
}

// Post creates an available record owned by the acting business.
func (s *DonationService) Post(actor *domain.Account, in PostInput) (*domain.Donation, error) {
	if actor.Role != domain.RoleBusiness {
		return nil, ErrWrongRole
	}
	if in.Quantity < 1 {
		return nil, ErrBadQuantity
	}
	if !in.ExpiresAt.After(time.Now()) {
		return nil, ErrExpired
	}
	code := in.HandoffCode
	if code == "" {
		// first uuid block is 8 hex chars; fits the 4-10 alphanumeric code shape
		code = strings.ToUpper(uuid.NewString()[:8])
	}

	d := &domain.Donation{
		ID:                 uuid.NewString(),
		ItemName:           in.ItemName,
		Description:        in.Description,
		Quantity:           in.Quantity,
		Unit:               in.Unit,
		PricePerUnit:       in.PricePerUnit,
		IsFree:             in.PricePerUnit == nil,
		PhotoURL:           in.PhotoURL,
		PickupLocation:     in.PickupLocation,
		PickupInstructions: in.PickupInstructions,
		PostedBy:           actor.ID,
		Status:             domain.StatusAvailable,
		HandoffCode:        code,
		ExpiresAt:          in.ExpiresAt.UTC().Format(sqliteTime),
	}
	if err := s.Donations.Create(d); err != nil {
		return nil, err
	}
	s.annotate(d.ID, "Donation posted.")
	return s.Donations.ByID(d.ID)
}

// Get returns a record with its thread, if the actor may see it: the poster,
// the claimant, or any organization while it is still available. Anything else
// reads as not found rather than forbidden.
func (s *DonationService) Get(actor *domain.Account, id string) (*domain.Donation, []domain.Message, error) {
	d, err := s.Donations.ByID(id)
	if err != nil {
		return nil, nil, ErrNotFound
	}
	if !visibleTo(actor, d) {
		return nil, nil, ErrNotFound
	}
	msgs, err := s.Messages.ListByDonation(id)
	if err != nil {
		return nil, nil, err
	}
	return d, msgs, nil
}

// List partitions records by status and scopes them to the acting account.
// Businesses only ever see what they posted; organizations see everything
// available plus their own claims and history.
func (s *DonationService) List(actor *domain.Account, listType, q string) ([]domain.Donation, error) {
	f := repos.ListFilter{Q: q}
	switch listType {
	case "available":
		f.Statuses = []string{domain.StatusAvailable}
	case "claimed":
		f.Statuses = []string{domain.StatusClaimed}
	case "history":
		f.Statuses = []string{domain.StatusDelivered, domain.StatusExpired}
	case "all":
		// no status narrowing
	default:
		f.Statuses = []string{domain.StatusAvailable}
	}

	if actor.Role == domain.RoleBusiness {
		f.PostedBy = actor.ID
		return s.Donations.List(f)
	}

	// Organizations: 'available' is the open marketplace; everything else is
	// scoped to their own claims. 'all' needs both slices.
	switch listType {
	case "available":
		return s.Donations.List(f)
	case "all":
		open := repos.ListFilter{Statuses: []string{domain.StatusAvailable}, Q: q}
		avail, err := s.Donations.List(open)
		if err != nil {
			return nil, err
		}
		f.Statuses = []string{domain.StatusClaimed, domain.StatusDelivered, domain.StatusExpired}
		f.ClaimedBy = actor.ID
		mine, err := s.Donations.List(f)
		if err != nil {
			return nil, err
		}
		return append(avail, mine...), nil
	default:
		f.ClaimedBy = actor.ID
		return s.Donations.List(f)
	}
}

// Claim is all-or-nothing: the requested quantity must fit the offer, but the
// entire record transitions to claimed. The guarded update in the repo is what
// prevents two organizations winning the same record.
func (s *DonationService) Claim(actor *domain.Account, id string, qty int) (*domain.Donation, error) {
	if actor.Role != domain.RoleOrganization {
		return nil, ErrWrongRole
	}
	d, err := s.Donations.ByID(id)
	if err != nil {
		return nil, ErrNotFound
	}
	if d.Status != domain.StatusAvailable {
		return nil, ErrNotAvailable
	}
	if deadlinePassed(d.ExpiresAt) {
		// lazy guard for records the sweep has not reached yet
		return nil, ErrExpired
	}
	if qty < 1 || qty > d.Quantity {
		return nil, ErrBadQuantity
	}

	ok, err := s.Donations.Claim(id, actor.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// lost the race, or expired between read and update
		return nil, ErrNotAvailable
	}
	s.annotate(id, "Donation claimed.")
	return s.Donations.ByID(id)
}

// annotate appends a system lifecycle message; failures are logged by callers
// reading the thread, not fatal to the transition itself.
func (s *DonationService) annotate(donationID, body string) {
	_ = s.Messages.Insert(&domain.Message{
		ID:         uuid.NewString(),
		DonationID: donationID,
		Sender:     domain.SenderSystem,
		Body:       body,
	})
}

func visibleTo(actor *domain.Account, d *domain.Donation) bool {
	if d.PostedBy == actor.ID {
		return true
	}
	if d.ClaimedBy != nil && *d.ClaimedBy == actor.ID {
		return true
	}
	return d.Status == domain.StatusAvailable && actor.Role == domain.RoleOrganization
}

func deadlinePassed(expiresAt string) bool {
	t, err := time.Parse(sqliteTime, expiresAt)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, expiresAt); err != nil {
			return false
		}
	}
	return !t.After(time.Now().UTC())
}
