package domain

// Account roles. Businesses post donations, organizations claim them.
const (
	RoleBusiness     = "business"
	RoleOrganization = "organization"
)

type Account struct {
	ID    string `db:"id" json:"id"`
	Email string `db:"email" json:"email"`
	Name  string `db:"name" json:"name"`
	Hash  string `db:"password_hash" json:"-"`
	Role  string `db:"role" json:"role"`
}
