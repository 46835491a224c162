package model

// AdminUser is an account allowed to use the admin panel. Only the bcrypt
// hash of the password is stored. Corresponds to a row in the `admin_users`
// table.
type AdminUser struct {
	ID           int64  // admin_users.id
	Username     string // admin_users.username
	PasswordHash string // admin_users.password_hash
}
