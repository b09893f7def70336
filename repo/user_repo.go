package repo

import (
	"context"
	"fmt"

	"github.com/Skryldev/jobly/db"
	"github.com/Skryldev/jobly/models"
)

// UserRepository defines the persistence operations for users and their job
// applications.
type UserRepository interface {
	Register(ctx context.Context, params models.RegisterUserParams) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	FindAll(ctx context.Context, filter models.UserFilter) ([]*models.User, error)
	Get(ctx context.Context, username string) (*models.UserDetail, error)
	Update(ctx context.Context, username string, params models.UpdateUserParams) (*models.User, error)
	Remove(ctx context.Context, username string) error
	ApplyToJob(ctx context.Context, username string, jobID int64) error
}

// PasswordHasher is satisfied by auth.Hasher.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Check(hash, password string) (bool, error)
}

type userRepo struct {
	q      db.Querier
	hasher PasswordHasher
}

// NewUserRepo returns a UserRepository backed by q. Passwords are hashed and
// checked with hasher.
func NewUserRepo(q db.Querier, hasher PasswordHasher) UserRepository {
	return &userRepo{q: q, hasher: hasher}
}

var userAliases = map[string]string{
	"firstName": "first_name",
	"lastName":  "last_name",
	"isAdmin":   "is_admin",
}

const (
	userColumns = `username, first_name, last_name, email, is_admin`

	sqlUserExists = `
		SELECT username
		FROM   users
		WHERE  username = $1`

	sqlInsertUser = `
		INSERT INTO users (username, password, first_name, last_name, email, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns

	sqlUserWithPassword = `
		SELECT ` + userColumns + `, password
		FROM   users
		WHERE  username = $1`

	sqlSelectUsers = `
		SELECT ` + userColumns + `
		FROM   users`

	sqlGetUser = sqlSelectUsers + `
		WHERE  username = $1`

	sqlUserApplications = `
		SELECT job_id
		FROM   applications
		WHERE  username = $1
		ORDER  BY job_id`

	sqlJobIDExists = `
		SELECT id FROM jobs WHERE id = $1`

	sqlInsertApplication = `
		INSERT INTO applications (username, job_id)
		VALUES ($1, $2)`

	sqlDeleteUser = `
		DELETE FROM users WHERE username = $1`
)

// Register creates a user with a hashed password. It fails with
// ErrDuplicateKey when the username is taken.
func (r *userRepo) Register(ctx context.Context, params models.RegisterUserParams) (*models.User, error) {
	var existing string
	err := r.q.QueryRow(ctx, sqlUserExists, params.Username).Scan(&existing)
	switch {
	case err == nil:
		return nil, db.Duplicatef("duplicate username: %s", params.Username)
	case !db.IsNotFound(err):
		return nil, fmt.Errorf("repo/user: %w", err)
	}

	hash, err := r.hasher.Hash(params.Password)
	if err != nil {
		return nil, err
	}

	row := r.q.QueryRow(ctx, sqlInsertUser,
		params.Username, hash, params.FirstName, params.LastName, params.Email, params.IsAdmin)
	return scanUser(row)
}

// Authenticate returns the user when password matches. Unknown users and wrong
// passwords both fail with ErrUnauthorized.
func (r *userRepo) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u := &models.User{}
	var hash string
	err := r.q.QueryRow(ctx, sqlUserWithPassword, username).
		Scan(&u.Username, &u.FirstName, &u.LastName, &u.Email, &u.IsAdmin, &hash)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, db.Unauthorizedf("invalid username/password")
		}
		return nil, fmt.Errorf("repo/user: %w", err)
	}

	ok, err := r.hasher.Check(hash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, db.Unauthorizedf("invalid username/password")
	}
	return u, nil
}

// FindAll lists users ordered by username, narrowed by filter.
func (r *userRepo) FindAll(ctx context.Context, filter models.UserFilter) ([]*models.User, error) {
	where := db.NewConjunction(r.q.Dialect())
	if filter.IsAdmin != nil {
		where.Equals("is_admin", *filter.IsAdmin)
	}
	if filter.UsernameLike != "" {
		where.Contains("username", filter.UsernameLike)
	}

	query := sqlSelectUsers + where.Where() + " ORDER BY username"
	rows, err := r.q.Query(ctx, query, where.Args()...)
	if err != nil {
		return nil, fmt.Errorf("repo/user: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		u := &models.User{}
		if err := rows.Scan(&u.Username, &u.FirstName, &u.LastName, &u.Email, &u.IsAdmin); err != nil {
			return nil, fmt.Errorf("repo/user: scan: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Get returns the user with the ids of jobs they applied to.
func (r *userRepo) Get(ctx context.Context, username string) (*models.UserDetail, error) {
	u, err := scanUser(r.q.QueryRow(ctx, sqlGetUser, username))
	if err != nil {
		if db.IsNotFound(err) {
			return nil, db.NotFoundf("no user: %s", username)
		}
		return nil, err
	}

	rows, err := r.q.Query(ctx, sqlUserApplications, username)
	if err != nil {
		return nil, fmt.Errorf("repo/user: applications: %w", err)
	}
	defer rows.Close()

	detail := &models.UserDetail{User: *u, Applications: make([]int64, 0)}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("repo/user: scan application: %w", err)
		}
		detail.Applications = append(detail.Applications, id)
	}
	return detail, rows.Err()
}

// Update applies a partial update. A new password is hashed before it is
// written.
func (r *userRepo) Update(ctx context.Context, username string, params models.UpdateUserParams) (*models.User, error) {
	var data db.Assignments
	if params.Password != nil {
		hash, err := r.hasher.Hash(*params.Password)
		if err != nil {
			return nil, err
		}
		data = data.Set("password", hash)
	}
	if params.FirstName != nil {
		data = data.Set("firstName", *params.FirstName)
	}
	if params.LastName != nil {
		data = data.Set("lastName", *params.LastName)
	}
	if params.Email != nil {
		data = data.Set("email", *params.Email)
	}
	if params.IsAdmin != nil {
		data = data.Set("isAdmin", *params.IsAdmin)
	}

	set, values, err := db.PartialUpdate(data, userAliases)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		UPDATE users
		SET    %s
		WHERE  username = $%d
		RETURNING %s`, set, len(values)+1, userColumns)

	u, err := scanUser(r.q.QueryRow(ctx, query, append(values, username)...))
	if db.IsNotFound(err) {
		return nil, db.NotFoundf("no user: %s", username)
	}
	return u, err
}

// Remove deletes a user and their applications.
func (r *userRepo) Remove(ctx context.Context, username string) error {
	return deleteOne(ctx, r.q, sqlDeleteUser, username, "user")
}

// ApplyToJob records that username applied to jobID. Unknown jobs or users
// fail with ErrNotFound, a repeated application with ErrDuplicateKey.
func (r *userRepo) ApplyToJob(ctx context.Context, username string, jobID int64) error {
	var id int64
	if err := r.q.QueryRow(ctx, sqlJobIDExists, jobID).Scan(&id); err != nil {
		if db.IsNotFound(err) {
			return db.NotFoundf("no job: %d", jobID)
		}
		return fmt.Errorf("repo/user: %w", err)
	}

	var name string
	if err := r.q.QueryRow(ctx, sqlUserExists, username).Scan(&name); err != nil {
		if db.IsNotFound(err) {
			return db.NotFoundf("no user: %s", username)
		}
		return fmt.Errorf("repo/user: %w", err)
	}

	if _, err := r.q.Exec(ctx, sqlInsertApplication, username, jobID); err != nil {
		if db.IsDuplicateKey(err) {
			return db.Duplicatef("already applied: %s to job %d", username, jobID)
		}
		return fmt.Errorf("repo/user: %w", err)
	}
	return nil
}

func scanUser(row *db.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.Username, &u.FirstName, &u.LastName, &u.Email, &u.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("repo/user: %w", err)
	}
	return u, nil
}

var _ UserRepository = (*userRepo)(nil)
