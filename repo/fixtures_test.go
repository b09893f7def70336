package repo_test

import (
	"context"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Skryldev/jobly/auth"
	"github.com/Skryldev/jobly/db"
	"github.com/Skryldev/jobly/migrations"
	"github.com/Skryldev/jobly/models"
	"github.com/Skryldev/jobly/repo"
)

// ─────────────────────────────────────────────────────────────────────────────
// Test fixture
// ─────────────────────────────────────────────────────────────────────────────

// fixture is a fresh in-memory database with the schema applied and a small
// data set: companies c1..c3, jobs j1..j4 and users u1, u2.
type fixture struct {
	db        *db.DB
	companies repo.CompanyRepository
	jobs      repo.JobRepository
	users     repo.UserRepository
	jobIDs    []int64
}

func intp(n int) *int           { return &n }
func strp(s string) *string     { return &s }
func floatp(f float64) *float64 { return &f }
func boolp(b bool) *bool        { return &b }

func newFixture(t *testing.T) *fixture {
	t.Helper()

	database, err := db.Open(db.Config{
		DSN:          ":memory:?_foreign_keys=on",
		DriverName:   "sqlite3",
		MaxOpenConns: 1, // every connection to :memory: is a separate database
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	ctx := context.Background()
	require.NoError(t, migrations.ApplySchema(ctx, database))

	f := &fixture{
		db:        database,
		companies: repo.NewCompanyRepo(database),
		jobs:      repo.NewJobRepo(database),
		users:     repo.NewUserRepo(database, auth.NewHasher(bcrypt.MinCost)),
	}

	for _, c := range []models.CreateCompanyParams{
		{Handle: "c1", Name: "C1", Description: "Desc1", NumEmployees: intp(1), LogoURL: strp("http://c1.img")},
		{Handle: "c2", Name: "C2", Description: "Desc2", NumEmployees: intp(2), LogoURL: strp("http://c2.img")},
		{Handle: "c3", Name: "C3", Description: "Desc3", NumEmployees: intp(3), LogoURL: strp("http://c3.img")},
	} {
		_, err := f.companies.Create(ctx, c)
		require.NoError(t, err)
	}

	for _, j := range []models.CreateJobParams{
		{Title: "Job1", Salary: intp(1), Equity: floatp(0.1), CompanyHandle: "c1"},
		{Title: "Job2", Salary: intp(2), Equity: floatp(0.2), CompanyHandle: "c1"},
		{Title: "Job3", Salary: intp(3), Equity: floatp(0), CompanyHandle: "c1"},
		{Title: "Job4", CompanyHandle: "c1"},
	} {
		job, err := f.jobs.Create(ctx, j)
		require.NoError(t, err)
		f.jobIDs = append(f.jobIDs, job.ID)
	}

	for _, u := range []models.RegisterUserParams{
		{Username: "u1", Password: "password1", FirstName: "U1F", LastName: "U1L", Email: "u1@email.com"},
		{Username: "u2", Password: "password2", FirstName: "U2F", LastName: "U2L", Email: "u2@email.com", IsAdmin: true},
	} {
		_, err := f.users.Register(ctx, u)
		require.NoError(t, err)
	}
	return f
}

func repoForTx(tx *db.Tx) repo.UserRepository {
	return repo.NewUserRepo(tx, auth.NewHasher(bcrypt.MinCost))
}
