package users

// UserRepo stores accounts for the stub API server
type UserRepo interface {
	Upsert(user *User) error
	GetByEmail(email string) (*User, error)
	GetByID(ID int64) (*User, error)
	List(offset, limit int) ([]*User, error)
}
