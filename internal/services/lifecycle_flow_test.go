package services_test

import (
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"foodlink/internal/domain"
	"foodlink/internal/repos"
	"foodlink/internal/services"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	schema := `
	CREATE TABLE accounts(id TEXT PRIMARY KEY, email TEXT UNIQUE, name TEXT, password_hash TEXT, role TEXT,
	  created_at TEXT);
	CREATE TABLE sessions(id TEXT PRIMARY KEY, account_id TEXT, created_at TEXT, last_seen TEXT);
	CREATE TABLE donations(id TEXT PRIMARY KEY, item_name TEXT, description TEXT DEFAULT '', quantity INTEGER,
	  unit TEXT, price_per_unit NUMERIC, is_free INTEGER DEFAULT 1, photo_url TEXT DEFAULT '',
	  pickup_location TEXT DEFAULT '', pickup_instructions TEXT DEFAULT '', posted_by TEXT, claimed_by TEXT,
	  status TEXT DEFAULT 'available', handoff_code TEXT, failed_validations INTEGER DEFAULT 0,
	  quality_rating INTEGER, version INTEGER DEFAULT 1, posted_at TEXT DEFAULT CURRENT_TIMESTAMP,
	  expires_at TEXT, claimed_at TEXT, delivered_at TEXT);
	CREATE TABLE messages(id TEXT PRIMARY KEY, donation_id TEXT, sender TEXT, body TEXT,
	  created_at TEXT DEFAULT CURRENT_TIMESTAMP);

	INSERT INTO accounts(id,email,name,password_hash,role) VALUES
	  ('biz-a','a@biz.test','Biz A','x','business'),
	  ('biz-b','b@biz.test','Biz B','x','business'),
	  ('org-a','a@org.test','Org A','x','organization'),
	  ('org-b','b@org.test','Org B','x','organization');
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}
	return db
}

func acct(id, role string) *domain.Account {
	return &domain.Account{ID: id, Role: role}
}

// insertDonation seeds one record with an expiry offset like '+2 days' or '-1 days'.
func insertDonation(t *testing.T, db *sqlx.DB, id, postedBy, status string, qty int, code, expiryOffset string) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO donations(id,item_name,quantity,unit,posted_by,status,handoff_code,expires_at)
		VALUES(?,?,?,?,?,?,?,datetime('now',?))
	`, id, "Item "+id, qty, "cans", postedBy, status, code, expiryOffset)
	if err != nil {
		t.Fatal(err)
	}
}

func newLifecycle(db *sqlx.DB) (*services.DonationService, *services.HandoffService) {
	donationRepo := repos.NewDonationRepo(db)
	messageRepo := repos.NewMessageRepo(db)
	donationSvc := services.NewDonationService(donationRepo, messageRepo)
	return donationSvc, services.NewHandoffService(donationRepo, donationSvc)
}

// Full claim -> wrong code -> right code -> rate -> re-rate walk over one record.
func TestLifecycle_ClaimValidateRate(t *testing.T) {
	db := memdb(t)
	insertDonation(t, db, "d1", "biz-a", "available", 24, "VAL100", "+3 days")
	donationSvc, handoffSvc := newLifecycle(db)

	org := acct("org-a", "organization")
	biz := acct("biz-a", "business")

	d, err := donationSvc.Claim(org, "d1", 3)
	if err != nil {
		t.Fatal(err)
	}
	if d.Status != domain.StatusClaimed || d.ClaimedBy == nil || *d.ClaimedBy != "org-a" {
		t.Fatalf("bad claim result: %+v", d)
	}
	if d.ClaimedAt == nil {
		t.Fatal("claim timestamp not set")
	}
	if d.Version != 2 {
		t.Fatalf("want version=2 after claim, got %d", d.Version)
	}

	// wrong code: no transition
	if _, err := handoffSvc.ValidateDelivery(biz, "d1", "WRONG1"); err != services.ErrCodeMismatch {
		t.Fatalf("want code mismatch, got %v", err)
	}
	d2, _ := repos.NewDonationRepo(db).ByID("d1")
	if d2.Status != domain.StatusClaimed {
		t.Fatalf("mismatch must not change status, got %s", d2.Status)
	}

	// right code, lowercased: comparison is case-insensitive
	d3, err := handoffSvc.ValidateDelivery(biz, "d1", "val100")
	if err != nil {
		t.Fatal(err)
	}
	if d3.Status != domain.StatusDelivered || d3.DeliveredAt == nil {
		t.Fatalf("bad delivery result: %+v", d3)
	}
	if *d3.DeliveredAt < *d3.ClaimedAt {
		t.Fatalf("delivered_at %s before claimed_at %s", *d3.DeliveredAt, *d3.ClaimedAt)
	}

	d4, err := handoffSvc.RateQuality(org, "d1", 5)
	if err != nil {
		t.Fatal(err)
	}
	if d4.QualityRating == nil || *d4.QualityRating != 5 {
		t.Fatalf("bad rating result: %+v", d4)
	}

	// second rating is rejected by the stored guard
	if _, err := handoffSvc.RateQuality(org, "d1", 3); err != services.ErrAlreadyRated {
		t.Fatalf("want already rated, got %v", err)
	}
	d5, _ := repos.NewDonationRepo(db).ByID("d1")
	if *d5.QualityRating != 5 {
		t.Fatalf("rating overwritten: %d", *d5.QualityRating)
	}
}

// System annotations land in the thread as the lifecycle advances.
func TestLifecycle_SystemMessages(t *testing.T) {
	db := memdb(t)
	insertDonation(t, db, "d1", "biz-a", "available", 5, "CODE99", "+2 days")
	donationSvc, handoffSvc := newLifecycle(db)

	if _, err := donationSvc.Claim(acct("org-a", "organization"), "d1", 1); err != nil {
		t.Fatal(err)
	}
	if _, err := handoffSvc.ValidateDelivery(acct("biz-a", "business"), "d1", "CODE99"); err != nil {
		t.Fatal(err)
	}

	msgs, err := repos.NewMessageRepo(db).ListByDonation("d1")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 {
		t.Fatalf("want 2 system messages, got %d", len(msgs))
	}
	for _, m := range msgs {
		if m.Sender != domain.SenderSystem {
			t.Fatalf("unexpected sender %s", m.Sender)
		}
	}
}
