package domain

// User is the sanitized identity record. The password never appears here;
// seed credentials live as bcrypt hashes in SeedUser.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	Bio      string `json:"bio,omitempty"`
}

// SeedUser is an entry in the fixed login directory.
type SeedUser struct {
	User
	Hash string `json:"-"`
}

// ProfilePatch carries the only fields a profile update may touch.
type ProfilePatch struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Location *string `json:"location,omitempty"`
	Bio      *string `json:"bio,omitempty"`
}
