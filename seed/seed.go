// Package seed loads YAML fixtures into a Jobly database.
package seed

import (
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Skryldev/jobly/db"
	"github.com/Skryldev/jobly/repo"
)

// Fixture is the document layout of a seed file.
type Fixture struct {
	Companies    []Company     `yaml:"companies"`
	Jobs         []Job         `yaml:"jobs"`
	Users        []User        `yaml:"users"`
	Applications []Application `yaml:"applications"`
}

type Company struct {
	Handle       string  `yaml:"handle"`
	Name         string  `yaml:"name"`
	Description  string  `yaml:"description"`
	NumEmployees *int    `yaml:"num_employees"`
	LogoURL      *string `yaml:"logo_url"`
}

type Job struct {
	Title         string   `yaml:"title"`
	Salary        *int     `yaml:"salary"`
	Equity        *float64 `yaml:"equity"`
	CompanyHandle string   `yaml:"company_handle"`
}

// User holds a plain-text password; Apply hashes it.
type User struct {
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Email     string `yaml:"email"`
	IsAdmin   bool   `yaml:"is_admin"`
}

// Application names its job by title and company since job ids are only
// known after insert.
type Application struct {
	Username      string `yaml:"username"`
	JobTitle      string `yaml:"job_title"`
	CompanyHandle string `yaml:"company_handle"`
}

// Load reads a fixture file.
func Load(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a fixture. Unknown keys are rejected.
func Parse(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fx Fixture
	if err := dec.Decode(&fx); err != nil && err != io.EOF {
		return nil, fmt.Errorf("seed: decode: %w", err)
	}
	return &fx, nil
}

const (
	sqlSeedCompany = `
		INSERT INTO companies (handle, name, description, num_employees, logo_url)
		VALUES ($1, $2, $3, $4, $5)`

	sqlSeedJob = `
		INSERT INTO jobs (title, salary, equity, company_handle)
		VALUES ($1, $2, $3, $4)`

	sqlSeedUser = `
		INSERT INTO users (username, password, first_name, last_name, email, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6)`

	sqlSeedApplication = `
		INSERT INTO applications (username, job_id)
		SELECT CAST($1 AS VARCHAR(25)), id FROM jobs WHERE title = $2 AND company_handle = $3`
)

// Counts reports how many rows Apply inserted per table.
type Counts struct {
	Companies, Jobs, Users, Applications int
}

// Apply inserts the whole fixture in one transaction: either every row lands
// or none does. Passwords are hashed with hasher before the transaction
// starts.
func Apply(ctx context.Context, database *db.DB, fx *Fixture, hasher repo.PasswordHasher) (Counts, error) {
	type hashedUser struct {
		User
		hash string
	}
	users := make([]hashedUser, len(fx.Users))
	for i, u := range fx.Users {
		hash, err := hasher.Hash(u.Password)
		if err != nil {
			return Counts{}, err
		}
		users[i] = hashedUser{User: u, hash: hash}
	}

	err := database.ExecTx(ctx, func(tx *db.Tx) error {
		if err := db.TxBatchExec(ctx, tx, sqlSeedCompany, fx.Companies, func(c Company) []any {
			return []any{c.Handle, c.Name, c.Description, c.NumEmployees, c.LogoURL}
		}); err != nil {
			return fmt.Errorf("seed: companies: %w", err)
		}
		if err := db.TxBatchExec(ctx, tx, sqlSeedJob, fx.Jobs, func(j Job) []any {
			return []any{j.Title, j.Salary, j.Equity, j.CompanyHandle}
		}); err != nil {
			return fmt.Errorf("seed: jobs: %w", err)
		}
		if err := db.TxBatchExec(ctx, tx, sqlSeedUser, users, func(u hashedUser) []any {
			return []any{u.Username, u.hash, u.FirstName, u.LastName, u.Email, u.IsAdmin}
		}); err != nil {
			return fmt.Errorf("seed: users: %w", err)
		}
		for _, a := range fx.Applications {
			res, err := tx.Exec(ctx, sqlSeedApplication, a.Username, a.JobTitle, a.CompanyHandle)
			if err != nil {
				return fmt.Errorf("seed: applications: %w", err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return db.NotFoundf("seed: no job %q at %s", a.JobTitle, a.CompanyHandle)
			}
		}
		return nil
	})
	if err != nil {
		return Counts{}, err
	}
	return Counts{
		Companies:    len(fx.Companies),
		Jobs:         len(fx.Jobs),
		Users:        len(fx.Users),
		Applications: len(fx.Applications),
	}, nil
}
