package services

import (
	"errors"

	"github.com/google/uuid"

	"foodlink/internal/domain"
	"foodlink/internal/repos"
)

var ErrThreadClosed = errors.New("messaging is only open while the donation is claimed")

type MessageService struct {
	Donations *repos.DonationRepo
	Messages  *repos.MessageRepo
}

func NewMessageService(donations *repos.DonationRepo, messages *repos.MessageRepo) *MessageService {
	return &MessageService{Donations: donations, Messages: messages}
}

// Thread returns the donation's messages, visible to either party.
func (s *MessageService) Thread(actor *domain.Account, donationID string) ([]domain.Message, error) {
	d, err := s.Donations.ByID(donationID)
	if err != nil {
		return nil, ErrNotFound
	}
	if !visibleTo(actor, d) {
		return nil, ErrNotFound
	}
	return s.Messages.ListByDonation(donationID)
}

// Post appends a message from the acting party. Only the poster (as business)
// or the claimant (as organization) may write, and only while the record is
// claimed; once delivered the thread is read-only.
func (s *MessageService) Post(actor *domain.Account, donationID, body string) (*domain.Message, error) {
	d, err := s.Donations.ByID(donationID)
	if err != nil {
		return nil, ErrNotFound
	}

	var sender string
	switch {
	case d.PostedBy == actor.ID:
		sender = domain.SenderBusiness
	case d.ClaimedBy != nil && *d.ClaimedBy == actor.ID:
		sender = domain.SenderOrganization
	default:
		return nil, ErrNotFound
	}

	if d.Status != domain.StatusClaimed {
		return nil, ErrThreadClosed
	}

	m := &domain.Message{
		ID:         uuid.NewString(),
		DonationID: donationID,
		Sender:     sender,
		Body:       body,
	}
	if err := s.Messages.Insert(m); err != nil {
		return nil, err
	}
	return m, nil
}
