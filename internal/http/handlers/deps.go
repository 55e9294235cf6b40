package handlers

import (
	"time"

	"github.com/jmoiron/sqlx"

	"foodlink/internal/repos"
	"foodlink/internal/services"
)

type Deps struct {
	AuthHandler     *AuthHandler
	DonationHandler *DonationHandler
	HandoffHandler  *HandoffHandler
	MessageHandler  *MessageHandler

	Auth    *services.AuthService
	Sweeper *services.ExpirySweeper
}

func NewDeps(db *sqlx.DB, sweepInterval time.Duration) *Deps {
	accountRepo := repos.NewAccountRepo(db)
	donationRepo := repos.NewDonationRepo(db)
	messageRepo := repos.NewMessageRepo(db)

	authSvc := &services.AuthService{Accounts: accountRepo}
	donationSvc := services.NewDonationService(donationRepo, messageRepo)
	handoffSvc := services.NewHandoffService(donationRepo, donationSvc)
	msgSvc := services.NewMessageService(donationRepo, messageRepo)

	return &Deps{
		AuthHandler:     &AuthHandler{Auth: authSvc},
		DonationHandler: &DonationHandler{Donations: donationSvc},
		HandoffHandler:  &HandoffHandler{Handoff: handoffSvc},
		MessageHandler:  &MessageHandler{Msgs: msgSvc},
		Auth:            authSvc,
		Sweeper:         services.NewExpirySweeper(donationRepo, sweepInterval),
	}
}
