//go:build integration

package repo_test

import (
	"context"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"golang.org/x/crypto/bcrypt"

	"github.com/Skryldev/jobly/auth"
	"github.com/Skryldev/jobly/db"
	"github.com/Skryldev/jobly/migrations"
	"github.com/Skryldev/jobly/models"
	"github.com/Skryldev/jobly/repo"
)

// Run with: go test -tags integration ./repo/...
// Requires a Docker daemon.
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("jobly_test"),
		postgres.WithUsername("jobly"),
		postgres.WithPassword("jobly"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, migrations.Up(dsn))
	return dsn
}

func TestPostgres(t *testing.T) {
	dsn := startPostgres(t)

	for _, driver := range []string{"pgx", "postgres"} {
		t.Run(driver, func(t *testing.T) {
			database, err := db.Open(db.Config{
				DSN:            dsn,
				DriverName:     driver,
				MaxOpenConns:   5,
				DefaultTimeout: 5 * time.Second,
			})
			require.NoError(t, err)
			t.Cleanup(func() { _ = database.Close() })
			require.Equal(t, db.Postgres, database.Dialect())

			ctx := context.Background()
			_, err = database.Exec(ctx, `TRUNCATE companies, users CASCADE`)
			require.NoError(t, err)

			companies := repo.NewCompanyRepo(database)
			jobs := repo.NewJobRepo(database)
			users := repo.NewUserRepo(database, auth.NewHasher(bcrypt.MinCost))

			_, err = companies.Create(ctx, models.CreateCompanyParams{
				Handle: "acme", Name: "Acme Networks", Description: "d", NumEmployees: intp(50),
			})
			require.NoError(t, err)

			// unique name is enforced by the server and mapped from SQLSTATE 23505
			_, err = companies.Create(ctx, models.CreateCompanyParams{Handle: "acme2", Name: "Acme Networks", Description: "d"})
			assert.True(t, db.IsDuplicateKey(err), "got %v", err)

			got, err := companies.FindAll(ctx, models.CompanyFilter{MinEmployees: intp(10), NameLike: "NETWORK"})
			require.NoError(t, err)
			require.Len(t, got, 1)

			job, err := jobs.Create(ctx, models.CreateJobParams{
				Title: "Data Engineer", Salary: intp(150), Equity: floatp(0.02), CompanyHandle: "acme",
			})
			require.NoError(t, err)
			assert.InDelta(t, 0.02, *job.Equity, 1e-9)

			list, err := jobs.FindAll(ctx, models.JobFilter{MinSalary: intp(150), HasEquity: true, TitleLike: "data"})
			require.NoError(t, err)
			require.Len(t, list, 1)

			_, err = jobs.Create(ctx, models.CreateJobParams{Title: "X", CompanyHandle: "nope"})
			assert.True(t, db.IsForeignKeyViolation(err), "got %v", err)

			_, err = jobs.Update(ctx, job.ID, models.UpdateJobParams{Equity: floatp(2)})
			assert.True(t, db.IsCheckViolation(err), "got %v", err)

			_, err = users.Register(ctx, models.RegisterUserParams{
				Username: "u1", Password: "password", FirstName: "F", LastName: "L", Email: "u1@jobly.dev",
			})
			require.NoError(t, err)
			u, err := users.Update(ctx, "u1", models.UpdateUserParams{IsAdmin: boolp(true), FirstName: strp("G")})
			require.NoError(t, err)
			assert.True(t, u.IsAdmin)

			require.NoError(t, users.ApplyToJob(ctx, "u1", job.ID))
			assert.True(t, db.IsDuplicateKey(users.ApplyToJob(ctx, "u1", job.ID)))

			require.NoError(t, companies.Remove(ctx, "acme"))
			_, err = jobs.Get(ctx, job.ID)
			assert.True(t, db.IsNotFound(err))
		})
	}
}
