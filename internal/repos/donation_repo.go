package repos

import (
	"github.com/jmoiron/sqlx"

	"foodlink/internal/domain"
)

type DonationRepo struct{ db *sqlx.DB }

func NewDonationRepo(db *sqlx.DB) *DonationRepo { return &DonationRepo{db: db} }

const donationCols = `id,item_name,description,quantity,unit,price_per_unit,is_free,photo_url,
	pickup_location,pickup_instructions,posted_by,claimed_by,status,handoff_code,
	failed_validations,quality_rating,version,posted_at,expires_at,claimed_at,delivered_at`

// ListFilter narrows a listing query. Empty fields are ignored; ownership
// scoping is decided by the service layer, not here.
type ListFilter struct {
	Statuses  []string
	PostedBy  string
	ClaimedBy string
	Q         string
}

func (r *DonationRepo) Create(d *domain.Donation) error {
	_, err := r.db.Exec(`
	  INSERT INTO donations
	    (id,item_name,description,quantity,unit,price_per_unit,is_free,photo_url,
	     pickup_location,pickup_instructions,posted_by,status,handoff_code,version,posted_at,expires_at)
	  VALUES
	    (?,?,?,?,?,?,?,?,?,?,?,'available',?,1,CURRENT_TIMESTAMP,?)
	`, d.ID, d.ItemName, d.Description, d.Quantity, d.Unit, d.PricePerUnit, d.IsFree, d.PhotoURL,
		d.PickupLocation, d.PickupInstructions, d.PostedBy, d.HandoffCode, d.ExpiresAt)
	return err
}

func (r *DonationRepo) ByID(id string) (*domain.Donation, error) {
	var d domain.Donation
	if err := r.db.Get(&d, `SELECT `+donationCols+` FROM donations WHERE id=?`, id); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DonationRepo) List(f ListFilter) ([]domain.Donation, error) {
	query := `SELECT ` + donationCols + ` FROM donations WHERE 1=1`
	args := []any{}

	if len(f.Statuses) > 0 {
		q, a, err := sqlx.In(` AND status IN (?)`, f.Statuses)
		if err != nil {
			return nil, err
		}
		query += q
		args = append(args, a...)
	}
	if f.PostedBy != "" {
		query += ` AND posted_by=?`
		args = append(args, f.PostedBy)
	}
	if f.ClaimedBy != "" {
		query += ` AND claimed_by=?`
		args = append(args, f.ClaimedBy)
	}
	if f.Q != "" {
		query += ` AND LOWER(item_name) LIKE '%'||LOWER(?)||'%'`
		args = append(args, f.Q)
	}
	query += ` ORDER BY datetime(posted_at) DESC`

	var out []domain.Donation
	err := r.db.Select(&out, query, args...)
	return out, err
}

// Claim atomically moves an available, unexpired record to 'claimed' for the
// given organization. Returns false when the guarded update matched no row
// (already claimed, expired, or wrong state).
func (r *DonationRepo) Claim(id, orgID string) (bool, error) {
	res, err := r.db.Exec(`
		UPDATE donations
		SET status='claimed', claimed_by=?, claimed_at=CURRENT_TIMESTAMP, version=version+1
		WHERE id=? AND status='available' AND datetime(expires_at) > datetime('now')
	`, orgID, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// MarkDelivered transitions claimed -> delivered, stamping the delivery time.
func (r *DonationRepo) MarkDelivered(id string) (bool, error) {
	res, err := r.db.Exec(`
		UPDATE donations
		SET status='delivered', delivered_at=CURRENT_TIMESTAMP, version=version+1
		WHERE id=? AND status='claimed'
	`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// RecordFailedValidation bumps the failure counter and returns the new count.
func (r *DonationRepo) RecordFailedValidation(id string) (int, error) {
	if _, err := r.db.Exec(`
		UPDATE donations SET failed_validations=failed_validations+1
		WHERE id=? AND status='claimed'
	`, id); err != nil {
		return 0, err
	}
	var n int
	err := r.db.Get(&n, `SELECT failed_validations FROM donations WHERE id=?`, id)
	return n, err
}

// SetRating stores a quality rating exactly once; the IS NULL predicate is the
// already-rated guard.
func (r *DonationRepo) SetRating(id string, rating int) (bool, error) {
	res, err := r.db.Exec(`
		UPDATE donations SET quality_rating=?
		WHERE id=? AND status='delivered' AND quality_rating IS NULL
	`, rating, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ExpireDue sweeps every available record past its deadline to 'expired'.
func (r *DonationRepo) ExpireDue() (int64, error) {
	res, err := r.db.Exec(`
		UPDATE donations
		SET status='expired', version=version+1
		WHERE status='available' AND datetime(expires_at) <= datetime('now')
	`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
