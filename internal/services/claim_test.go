package services_test

import (
	"testing"

	"foodlink/internal/domain"
	"foodlink/internal/repos"
	"foodlink/internal/services"
)

func TestClaim_Guards(t *testing.T) {
	db := memdb(t)
	insertDonation(t, db, "avail", "biz-a", "available", 10, "AAAA", "+2 days")
	insertDonation(t, db, "done", "biz-a", "delivered", 10, "BBBB", "+2 days")
	insertDonation(t, db, "stale", "biz-a", "available", 10, "CCCC", "-1 days")
	donationSvc, _ := newLifecycle(db)
	org := acct("org-a", "organization")

	// claiming a non-available record is a no-op
	if _, err := donationSvc.Claim(org, "done", 1); err != services.ErrNotAvailable {
		t.Fatalf("want not available, got %v", err)
	}
	d, _ := repos.NewDonationRepo(db).ByID("done")
	if d.Status != domain.StatusDelivered || d.ClaimedBy != nil {
		t.Fatalf("no-op claim mutated record: %+v", d)
	}

	// businesses cannot claim
	if _, err := donationSvc.Claim(acct("biz-b", "business"), "avail", 1); err != services.ErrWrongRole {
		t.Fatalf("want wrong role, got %v", err)
	}

	// quantity must fit the offer
	if _, err := donationSvc.Claim(org, "avail", 11); err != services.ErrBadQuantity {
		t.Fatalf("want bad quantity, got %v", err)
	}
	if _, err := donationSvc.Claim(org, "avail", 0); err != services.ErrBadQuantity {
		t.Fatalf("want bad quantity for zero, got %v", err)
	}

	// past-deadline records refuse claims even before the sweep runs
	if _, err := donationSvc.Claim(org, "stale", 1); err != services.ErrExpired {
		t.Fatalf("want expired, got %v", err)
	}

	// unknown id
	if _, err := donationSvc.Claim(org, "nope", 1); err != services.ErrNotFound {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestClaim_DoubleClaimLosesRace(t *testing.T) {
	db := memdb(t)
	insertDonation(t, db, "d1", "biz-a", "available", 4, "AAAA", "+2 days")
	donationSvc, _ := newLifecycle(db)

	if _, err := donationSvc.Claim(acct("org-a", "organization"), "d1", 2); err != nil {
		t.Fatal(err)
	}
	if _, err := donationSvc.Claim(acct("org-b", "organization"), "d1", 2); err != services.ErrNotAvailable {
		t.Fatalf("second claimant must be rejected, got %v", err)
	}
	d, _ := repos.NewDonationRepo(db).ByID("d1")
	if *d.ClaimedBy != "org-a" {
		t.Fatalf("claimant overwritten: %s", *d.ClaimedBy)
	}
}

// The guarded UPDATE is the real protection: even if the service-level status
// read raced, the repo refuses a second claim.
func TestClaim_RepoCompareAndSet(t *testing.T) {
	db := memdb(t)
	insertDonation(t, db, "d1", "biz-a", "available", 4, "AAAA", "+2 days")
	repo := repos.NewDonationRepo(db)

	ok, err := repo.Claim("d1", "org-a")
	if err != nil || !ok {
		t.Fatalf("first claim: ok=%v err=%v", ok, err)
	}
	ok, err = repo.Claim("d1", "org-b")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("CAS allowed a double claim")
	}
}

func TestClaim_RemovedFromAvailableListing(t *testing.T) {
	db := memdb(t)
	insertDonation(t, db, "d1", "biz-a", "available", 4, "AAAA", "+2 days")
	donationSvc, _ := newLifecycle(db)
	org := acct("org-a", "organization")

	before, err := donationSvc.List(org, "available", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(before) != 1 {
		t.Fatalf("want 1 available, got %d", len(before))
	}

	if _, err := donationSvc.Claim(org, "d1", 1); err != nil {
		t.Fatal(err)
	}

	after, err := donationSvc.List(org, "available", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(after) != 0 {
		t.Fatalf("claimed record still listed as available: %+v", after)
	}
}
