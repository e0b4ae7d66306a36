package models

// User is the account identity as returned by the server on login. It is
// cached locally so a session can resume while disconnected.
type User struct {
	ID          int64   `json:"id"`
	Username    string  `json:"username"`
	Name        string  `json:"name"`
	Role        string  `json:"role"`
	Permissions *string `json:"permissions"`
}

func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}

func (u *User) IsClient() bool {
	return u.Role == "client"
}

// CanWrite reports whether the account may push local edits. Staff and admin
// always can; clients only with read_write permissions.
func (u *User) CanWrite() bool {
	if !u.IsClient() {
		return true
	}
	return u.Permissions != nil && *u.Permissions == "read_write"
}
