package services

import (
	"errors"
	"strings"

	"foodlink/internal/domain"
	"foodlink/internal/repos"
)

var (
	ErrNotClaimed    = errors.New("donation is not awaiting validation")
	ErrNotDelivered  = errors.New("donation has not been delivered")
	ErrCodeMismatch  = errors.New("handoff code does not match")
	ErrHandoffLocked = errors.New("too many failed attempts, validation locked")
	ErrAlreadyRated  = errors.New("donation already rated")
	ErrNotYours      = errors.New("donation not found")
)

// maxValidationAttempts is the lockout threshold for wrong handoff codes.
const maxValidationAttempts = 5

// HandoffService closes the lifecycle: the business validates the handoff code
// the organization presents at pickup, then the organization rates quality.
type HandoffService struct {
	Donations *repos.DonationRepo
	Lifecycle *DonationService
}

func NewHandoffService(donations *repos.DonationRepo, lifecycle *DonationService) *HandoffService {
	return &HandoffService{Donations: donations, Lifecycle: lifecycle}
}

// ValidateDelivery compares the candidate code case-insensitively against the
// stored one. A match transitions claimed -> delivered; a mismatch only bumps
// the failure counter, and the fifth failure locks the handoff.
func (s *HandoffService) ValidateDelivery(actor *domain.Account, id, code string) (*domain.Donation, error) {
	d, err := s.Donations.ByID(id)
	if err != nil {
		return nil, ErrNotFound
	}
	if d.PostedBy != actor.ID {
		return nil, ErrNotYours
	}
	if d.Status != domain.StatusClaimed {
		return nil, ErrNotClaimed
	}
	if d.FailedValidations >= maxValidationAttempts {
		return nil, ErrHandoffLocked
	}

	if !strings.EqualFold(code, d.HandoffCode) {
		n, err := s.Donations.RecordFailedValidation(id)
		if err != nil {
			return nil, err
		}
		if n >= maxValidationAttempts {
			return nil, ErrHandoffLocked
		}
		return nil, ErrCodeMismatch
	}

	ok, err := s.Donations.MarkDelivered(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotClaimed
	}
	s.Lifecycle.annotate(id, "Delivery validated.")
	return s.Donations.ByID(id)
}

// RateQuality stores the claimant's 1-5 rating exactly once. The storage-level
// guard (not just this check) rejects a second rating.
func (s *HandoffService) RateQuality(actor *domain.Account, id string, rating int) (*domain.Donation, error) {
	if rating < 1 || rating > 5 {
		return nil, errors.New("rating must be an integer from 1 to 5")
	}
	d, err := s.Donations.ByID(id)
	if err != nil {
		return nil, ErrNotFound
	}
	if d.ClaimedBy == nil || *d.ClaimedBy != actor.ID {
		return nil, ErrNotYours
	}
	if d.Status != domain.StatusDelivered {
		return nil, ErrNotDelivered
	}
	if d.QualityRating != nil {
		return nil, ErrAlreadyRated
	}

	ok, err := s.Donations.SetRating(id, rating)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadyRated
	}
	return s.Donations.ByID(id)
}
