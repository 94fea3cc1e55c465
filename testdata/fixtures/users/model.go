package project

// User is an account holder.
type User struct {
	ID    int
	Name  string
	Email string
}

// Repository persists users.
type Repository interface {
	FindByID(id int) (*User, error)
	Save(user *User) error
}

func newUser(name, email string) *User {
	return &User{Name: name, Email: email}
}
