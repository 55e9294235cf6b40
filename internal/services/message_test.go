package services_test

import (
	"testing"

	"foodlink/internal/domain"
	"foodlink/internal/repos"
	"foodlink/internal/services"
)

func TestMessaging_GatedByClaimedStatus(t *testing.T) {
	db := memdb(t)
	insertDonation(t, db, "open", "biz-a", "available", 5, "AAAA", "+2 days")
	insertDonation(t, db, "taken", "biz-a", "claimed", 5, "BBBB", "+2 days")
	insertDonation(t, db, "done", "biz-a", "delivered", 5, "CCCC", "+2 days")
	if _, err := db.Exec(`UPDATE donations SET claimed_by='org-a' WHERE id IN ('taken','done')`); err != nil {
		t.Fatal(err)
	}
	msgSvc := services.NewMessageService(repos.NewDonationRepo(db), repos.NewMessageRepo(db))

	biz := acct("biz-a", "business")
	org := acct("org-a", "organization")

	// open thread: both parties can write
	m, err := msgSvc.Post(org, "taken", "When can we pick it up?")
	if err != nil {
		t.Fatal(err)
	}
	if m.Sender != domain.SenderOrganization {
		t.Fatalf("want organization sender, got %s", m.Sender)
	}
	m, err = msgSvc.Post(biz, "taken", "Tomorrow 10am-4pm.")
	if err != nil {
		t.Fatal(err)
	}
	if m.Sender != domain.SenderBusiness {
		t.Fatalf("want business sender, got %s", m.Sender)
	}

	// not claimed yet: closed
	if _, err := msgSvc.Post(biz, "open", "hello?"); err != services.ErrThreadClosed {
		t.Fatalf("want closed thread, got %v", err)
	}
	// delivered: read-only
	if _, err := msgSvc.Post(org, "done", "one more thing"); err != services.ErrThreadClosed {
		t.Fatalf("want closed thread after delivery, got %v", err)
	}
	// outsiders get not-found, not forbidden
	if _, err := msgSvc.Post(acct("org-b", "organization"), "taken", "hi"); err != services.ErrNotFound {
		t.Fatalf("want not found for outsider, got %v", err)
	}

	msgs, err := msgSvc.Thread(org, "taken")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 {
		t.Fatalf("want 2 messages, got %d", len(msgs))
	}
}

// Threads order by timestamp, not insertion: a backdated row sorts first.
func TestMessaging_TimestampOrder(t *testing.T) {
	db := memdb(t)
	insertDonation(t, db, "d1", "biz-a", "claimed", 5, "AAAA", "+2 days")
	if _, err := db.Exec(`UPDATE donations SET claimed_by='org-a' WHERE id='d1'`); err != nil {
		t.Fatal(err)
	}
	repo := repos.NewMessageRepo(db)

	if err := repo.Insert(&domain.Message{ID: "m-now", DonationID: "d1", Sender: "organization", Body: "now"}); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`
		INSERT INTO messages(id,donation_id,sender,body,created_at)
		VALUES('m-old','d1','system','Donation posted.',datetime('now','-2 days'))
	`); err != nil {
		t.Fatal(err)
	}

	msgs, err := repo.ListByDonation("d1")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 || msgs[0].ID != "m-old" || msgs[1].ID != "m-now" {
		t.Fatalf("bad ordering: %+v", msgs)
	}
}
