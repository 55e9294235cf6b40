package repos

import (
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed demo accounts and donations if the DB is empty (idempotent; safe to run every start)
	if err := seedAccounts(db); err != nil {
		return nil, err
	}
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Accounts & Sessions
CREATE TABLE IF NOT EXISTS accounts(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('business','organization')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_accounts_email ON accounts(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  account_id TEXT NULL REFERENCES accounts(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_account ON sessions(account_id);

-- Donations
CREATE TABLE IF NOT EXISTS donations(
  id TEXT PRIMARY KEY,
  item_name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  quantity INTEGER NOT NULL CHECK (quantity > 0),
  unit TEXT NOT NULL,
  price_per_unit NUMERIC NULL CHECK (price_per_unit IS NULL OR price_per_unit >= 0),
  is_free INTEGER NOT NULL DEFAULT 1,
  photo_url TEXT NOT NULL DEFAULT '',
  pickup_location TEXT NOT NULL,
  pickup_instructions TEXT NOT NULL DEFAULT '',
  posted_by TEXT NOT NULL REFERENCES accounts(id),
  claimed_by TEXT NULL REFERENCES accounts(id),
  status TEXT NOT NULL DEFAULT 'available'
    CHECK (status IN ('available','claimed','delivered','expired')),
  handoff_code TEXT NOT NULL,
  failed_validations INTEGER NOT NULL DEFAULT 0,
  quality_rating INTEGER NULL CHECK (quality_rating BETWEEN 1 AND 5),
  version INTEGER NOT NULL DEFAULT 1,
  posted_at TEXT DEFAULT CURRENT_TIMESTAMP,
  expires_at TEXT NOT NULL,
  claimed_at TEXT,
  delivered_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_donations_status     ON donations(status);
CREATE INDEX IF NOT EXISTS idx_donations_posted_by  ON donations(posted_by);
CREATE INDEX IF NOT EXISTS idx_donations_claimed_by ON donations(claimed_by);
CREATE INDEX IF NOT EXISTS idx_donations_expires_at ON donations(expires_at);

-- Messages (append-only, per donation)
CREATE TABLE IF NOT EXISTS messages(
  id TEXT PRIMARY KEY,
  donation_id TEXT NOT NULL REFERENCES donations(id) ON DELETE CASCADE,
  sender TEXT NOT NULL CHECK (sender IN ('business','organization','system')),
  body TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_messages_donation ON messages(donation_id, created_at);
`
	_, err := db.Exec(schema)
	return err
}

// seedAccounts ensures two businesses and two organizations exist (idempotent).
func seedAccounts(db *sqlx.DB) error {
	type a struct {
		ID, Email, Name, Role, Hash string
	}
	mk := func(id, email, name, role, raw string) a {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), 12)
		return a{ID: id, Email: email, Name: name, Role: role, Hash: string(h)}
	}

	accounts := []a{
		mk("biz-sunrise", "bakery@foodlink.test", "Sunrise Bakery", "business", "Passw0rd!"),
		mk("biz-orchard", "grocer@foodlink.test", "Orchard Grocers", "business", "Passw0rd!"),
		mk("org-shelter", "shelter@foodlink.test", "Harbor Shelter", "organization", "Passw0rd!"),
		mk("org-pantry", "pantry@foodlink.test", "Community Pantry", "organization", "Passw0rd!"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range accounts {
		if _, err := tx.Exec(`
			INSERT INTO accounts(id,email,name,password_hash,role)
			VALUES(?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.ID, x.Email, x.Name, x.Hash, x.Role); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// seedIfEmpty inserts demo donations covering every lifecycle state, plus their
// message threads.
func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM donations`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo donations/messages")

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	tx.MustExec(`INSERT INTO donations
	  (id,item_name,description,quantity,unit,price_per_unit,is_free,pickup_location,pickup_instructions,
	   posted_by,claimed_by,status,handoff_code,quality_rating,version,posted_at,expires_at,claimed_at,delivered_at) VALUES
	  ('don-bread','Assorted bread','Day-old loaves, good for toast.',10,'bags',NULL,1,
	   'Sunrise Bakery','Ask for Ana at the counter, Mon-Fri 9am-5pm.',
	   'biz-sunrise',NULL,'available','VAL100',NULL,1,
	   datetime('now','-2 days'),datetime('now','+3 days'),NULL,NULL),
	  ('don-apples','Fresh Fuji apples','Organic Fuji apples, some with small marks.',5,'kg',10.50,0,
	   'Orchard Grocers','Rear loading dock, ring the bell.',
	   'biz-orchard',NULL,'available','VAL101',NULL,1,
	   datetime('now','-1 days'),datetime('now','+5 days'),NULL,NULL),
	  ('don-soup','Canned lentil soup','Homestyle lentil soup, ready to heat.',24,'cans',NULL,1,
	   'Orchard Grocers','Call 30 minutes ahead.',
	   'biz-orchard','org-shelter','claimed','VAL102',NULL,2,
	   datetime('now','-3 days'),datetime('now','+2 days'),datetime('now','-1 days'),NULL),
	  ('don-milk','Semi-skimmed milk cartons','UHT milk, close to best-before (5 days).',20,'liters',5.00,0,
	   'Sunrise Bakery','Side entrance, parking available.',
	   'biz-sunrise','org-pantry','delivered','VAL103',4,3,
	   datetime('now','-5 days'),datetime('now','+1 days'),datetime('now','-3 days'),datetime('now','-1 days')),
	  ('don-yogurt','Greek yogurt cups','Plain unsweetened, good for 3 more days.',50,'cups',3.50,0,
	   'Orchard Grocers','Customer service desk.',
	   'biz-orchard',NULL,'expired','VAL104',NULL,2,
	   datetime('now','-6 days'),datetime('now','-2 days'),NULL,NULL)`)

	tx.MustExec(`INSERT INTO messages(id,donation_id,sender,body,created_at) VALUES
	  ('don-bread-m1','don-bread','system','Donation posted.',datetime('now','-2 days')),
	  ('don-apples-m1','don-apples','system','Donation posted.',datetime('now','-1 days')),
	  ('don-soup-m1','don-soup','system','Donation posted.',datetime('now','-3 days')),
	  ('don-soup-m2','don-soup','organization','Hi, we claimed this donation. When can we pick it up?',datetime('now','-1 days')),
	  ('don-soup-m3','don-soup','business','Great! Tomorrow between 10am and 4pm, please use the back entrance.',datetime('now','-1 days','+1 hours')),
	  ('don-milk-m1','don-milk','system','Donation posted.',datetime('now','-5 days')),
	  ('don-milk-m2','don-milk','organization','Picked up, thank you so much!',datetime('now','-1 days')),
	  ('don-milk-m3','don-milk','system','Delivery validated.',datetime('now','-1 days','+30 minutes')),
	  ('don-yogurt-m1','don-yogurt','system','Donation posted.',datetime('now','-6 days'))`)

	return tx.Commit()
}
