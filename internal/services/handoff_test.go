package services_test

import (
	"testing"

	"foodlink/internal/domain"
	"foodlink/internal/repos"
	"foodlink/internal/services"
)

func TestValidate_OnlyPosterAndOnlyClaimed(t *testing.T) {
	db := memdb(t)
	insertDonation(t, db, "open", "biz-a", "available", 5, "VAL100", "+2 days")
	insertDonation(t, db, "taken", "biz-a", "claimed", 5, "VAL200", "+2 days")
	_, handoffSvc := newLifecycle(db)

	// another business cannot even see the record
	if _, err := handoffSvc.ValidateDelivery(acct("biz-b", "business"), "taken", "VAL200"); err != services.ErrNotYours {
		t.Fatalf("want not yours, got %v", err)
	}
	// an available record is not awaiting validation
	if _, err := handoffSvc.ValidateDelivery(acct("biz-a", "business"), "open", "VAL100"); err != services.ErrNotClaimed {
		t.Fatalf("want not claimed, got %v", err)
	}
}

func TestValidate_LockoutAfterFiveFailures(t *testing.T) {
	db := memdb(t)
	insertDonation(t, db, "d1", "biz-a", "claimed", 5, "VAL100", "+2 days")
	_, handoffSvc := newLifecycle(db)
	biz := acct("biz-a", "business")

	for i := 0; i < 4; i++ {
		if _, err := handoffSvc.ValidateDelivery(biz, "d1", "NOPE1"); err != services.ErrCodeMismatch {
			t.Fatalf("attempt %d: want mismatch, got %v", i+1, err)
		}
	}
	// fifth failure trips the lock
	if _, err := handoffSvc.ValidateDelivery(biz, "d1", "NOPE1"); err != services.ErrHandoffLocked {
		t.Fatalf("want locked on fifth failure, got %v", err)
	}
	// even the correct code is refused once locked
	if _, err := handoffSvc.ValidateDelivery(biz, "d1", "VAL100"); err != services.ErrHandoffLocked {
		t.Fatalf("want locked, got %v", err)
	}
	d, _ := repos.NewDonationRepo(db).ByID("d1")
	if d.Status != domain.StatusClaimed {
		t.Fatalf("lockout must not change status, got %s", d.Status)
	}
}

func TestRate_Guards(t *testing.T) {
	db := memdb(t)
	insertDonation(t, db, "claimed", "biz-a", "claimed", 5, "VAL100", "+2 days")
	insertDonation(t, db, "done", "biz-a", "delivered", 5, "VAL200", "+2 days")
	if _, err := db.Exec(`UPDATE donations SET claimed_by='org-a' WHERE id IN ('claimed','done')`); err != nil {
		t.Fatal(err)
	}
	_, handoffSvc := newLifecycle(db)
	org := acct("org-a", "organization")

	// only delivered records can be rated
	if _, err := handoffSvc.RateQuality(org, "claimed", 4); err != services.ErrNotDelivered {
		t.Fatalf("want not delivered, got %v", err)
	}
	// value domain is 1..5
	if _, err := handoffSvc.RateQuality(org, "done", 0); err == nil {
		t.Fatal("rating 0 accepted")
	}
	if _, err := handoffSvc.RateQuality(org, "done", 6); err == nil {
		t.Fatal("rating 6 accepted")
	}
	// only the claimant rates
	if _, err := handoffSvc.RateQuality(acct("org-b", "organization"), "done", 4); err != services.ErrNotYours {
		t.Fatalf("want not yours, got %v", err)
	}

	d, err := handoffSvc.RateQuality(org, "done", 2)
	if err != nil {
		t.Fatal(err)
	}
	if *d.QualityRating != 2 {
		t.Fatalf("want rating 2, got %+v", d.QualityRating)
	}
}

// Direct storage-level check that the IS NULL predicate blocks a second write.
func TestRate_RepoSingleWriteGuard(t *testing.T) {
	db := memdb(t)
	insertDonation(t, db, "d1", "biz-a", "delivered", 5, "VAL100", "+2 days")
	repo := repos.NewDonationRepo(db)

	ok, err := repo.SetRating("d1", 5)
	if err != nil || !ok {
		t.Fatalf("first rating: ok=%v err=%v", ok, err)
	}
	ok, err = repo.SetRating("d1", 1)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("second rating accepted by storage")
	}
	d, _ := repo.ByID("d1")
	if *d.QualityRating != 5 {
		t.Fatalf("rating changed to %d", *d.QualityRating)
	}
}
