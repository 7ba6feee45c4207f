package model

const RoleAdmin = "admin"

// Identity is the acting principal as supplied by the auth layer.
type Identity struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (i Identity) Authenticated() bool { return i.Email != "" }

func (i Identity) IsAdmin() bool { return i.Authenticated() && i.Role == RoleAdmin }
