package store

// User is a child profile.
type User struct {
	ID int32

	// Standard fields
	CreatedTs int64
	UpdatedTs int64

	// Domain specific fields
	Name      string
	Age       int
	Locale    string
	Interests []string
}

// FindUser is the filter for listing users.
type FindUser struct {
	ID     *int32
	Name   *string
	Locale *string
	Limit  *int
}

// UpdateUser carries the mutable user fields; nil means unchanged.
type UpdateUser struct {
	ID        int32
	UpdatedTs int64

	Name      *string
	Age       *int
	Locale    *string
	Interests *[]string
}

// DeleteUser identifies the user to remove.
type DeleteUser struct {
	ID int32
}
