package models

// User represents a row in the "users" table. The password hash is never
// loaded into this type.
type User struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"isAdmin"`
}

// UserDetail is a user together with the ids of jobs they applied to.
type UserDetail struct {
	User
	Applications []int64 `json:"applications"`
}

// RegisterUserParams holds the fields required to create a user. Password is
// plain text here; the repository hashes it.
type RegisterUserParams struct {
	Username  string `json:"username" binding:"required,min=1,max=25"`
	Password  string `json:"password" binding:"required,min=5,max=20"`
	FirstName string `json:"firstName" binding:"required,min=1,max=30"`
	LastName  string `json:"lastName" binding:"required,min=1,max=30"`
	Email     string `json:"email" binding:"required,email,min=6,max=60"`
	IsAdmin   bool   `json:"isAdmin"`
}

// UpdateUserParams holds the fields a partial update may change.
type UpdateUserParams struct {
	Password  *string `json:"password" binding:"omitempty,min=5,max=20"`
	FirstName *string `json:"firstName" binding:"omitempty,min=1,max=30"`
	LastName  *string `json:"lastName" binding:"omitempty,min=1,max=30"`
	Email     *string `json:"email" binding:"omitempty,email,min=6,max=60"`
	IsAdmin   *bool   `json:"isAdmin"`
}

// UserFilter narrows User listings.
type UserFilter struct {
	IsAdmin      *bool  `form:"-"`
	UsernameLike string `form:"username"`
}

// Credentials is the body of a token request.
type Credentials struct {
	Username string `json:"username" binding:"required,min=1,max=25"`
	Password string `json:"password" binding:"required,min=1"`
}
