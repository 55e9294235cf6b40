package services

import (
	"context"
	"log"
	"time"

	"foodlink/internal/repos"
)

// ExpirySweeper periodically moves available donations past their deadline to
// 'expired'. Claims also guard lazily against unswept records, so the interval
// is a freshness knob, not a correctness one.
type ExpirySweeper struct {
	Donations *repos.DonationRepo
	Interval  time.Duration
}

func NewExpirySweeper(donations *repos.DonationRepo, interval time.Duration) *ExpirySweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ExpirySweeper{Donations: donations, Interval: interval}
}

// Run sweeps once immediately, then on every tick until ctx is canceled.
func (s *ExpirySweeper) Run(ctx context.Context) {
	s.sweep()
	t := time.NewTicker(s.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.sweep()
		}
	}
}

func (s *ExpirySweeper) sweep() {
	n, err := s.Donations.ExpireDue()
	if err != nil {
		log.Printf("[sweep] expire failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[sweep] expired %d donation(s)", n)
	}
}
