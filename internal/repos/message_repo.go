package repos

import (
	"github.com/jmoiron/sqlx"

	"foodlink/internal/domain"
)

type MessageRepo struct{ db *sqlx.DB }

func NewMessageRepo(db *sqlx.DB) *MessageRepo { return &MessageRepo{db: db} }

// Insert appends one message. There is no update or delete; the thread is
// append-only.
func (r *MessageRepo) Insert(m *domain.Message) error {
	_, err := r.db.Exec(`
	  INSERT INTO messages(id,donation_id,sender,body,created_at)
	  VALUES(?,?,?,?,CURRENT_TIMESTAMP)
	`, m.ID, m.DonationID, m.Sender, m.Body)
	return err
}

// ListByDonation returns the thread in timestamp order (not insertion order;
// seeded threads may carry past timestamps).
func (r *MessageRepo) ListByDonation(donationID string) ([]domain.Message, error) {
	var out []domain.Message
	err := r.db.Select(&out, `
		SELECT id,donation_id,sender,body,created_at
		FROM messages
		WHERE donation_id=?
		ORDER BY datetime(created_at), id
	`, donationID)
	return out, err
}
