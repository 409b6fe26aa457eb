package user

import "time"

// User represents a user record in the system.
type User struct {
	ID        string    // ID is the opaque identifier assigned by the store
	Name      string    // Name is the display name of the user
	Email     string    // Email is the unique email address of the user
	Age       int       // Age of the user in years
	Address   string    // Address is a free-form location, used as the bio language hint
	Bio       string    // Bio is an optional short biography
	CreatedAt time.Time // CreatedAt is set by the store on insert
	UpdatedAt time.Time // UpdatedAt is refreshed by the store on every write
}
