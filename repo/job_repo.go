package repo

import (
	"context"
	"fmt"

	"github.com/Skryldev/jobly/db"
	"github.com/Skryldev/jobly/models"
)

// JobRepository defines the persistence operations for job postings.
type JobRepository interface {
	Create(ctx context.Context, params models.CreateJobParams) (*models.Job, error)
	FindAll(ctx context.Context, filter models.JobFilter) ([]*models.Job, error)
	Get(ctx context.Context, id int64) (*models.JobDetail, error)
	Update(ctx context.Context, id int64, params models.UpdateJobParams) (*models.Job, error)
	Remove(ctx context.Context, id int64) error
}

type jobRepo struct {
	q db.Querier
}

// NewJobRepo returns a JobRepository backed by q.
func NewJobRepo(q db.Querier) JobRepository {
	return &jobRepo{q: q}
}

const (
	jobColumns = `id, title, salary, equity, company_handle`

	sqlJobExists = `
		SELECT id
		FROM   jobs
		WHERE  title = $1 AND company_handle = $2`

	sqlInsertJob = `
		INSERT INTO jobs (title, salary, equity, company_handle)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + jobColumns

	sqlSelectJobs = `
		SELECT ` + jobColumns + `
		FROM   jobs`

	sqlGetJob = `
		SELECT j.id, j.title, j.salary, j.equity,
		       c.handle, c.name, c.description, c.num_employees, c.logo_url
		FROM   jobs j
		JOIN   companies c ON c.handle = j.company_handle
		WHERE  j.id = $1`

	sqlDeleteJob = `
		DELETE FROM jobs WHERE id = $1`
)

// Create posts a job. A job with the same title at the same company is a
// duplicate; an unknown company surfaces as ErrForeignKeyViolation.
func (r *jobRepo) Create(ctx context.Context, params models.CreateJobParams) (*models.Job, error) {
	var existing int64
	err := r.q.QueryRow(ctx, sqlJobExists, params.Title, params.CompanyHandle).Scan(&existing)
	switch {
	case err == nil:
		return nil, db.Duplicatef("duplicate job: %s at %s", params.Title, params.CompanyHandle)
	case !db.IsNotFound(err):
		return nil, fmt.Errorf("repo/job: %w", err)
	}

	row := r.q.QueryRow(ctx, sqlInsertJob,
		params.Title, params.Salary, params.Equity, params.CompanyHandle)
	return scanJob(row)
}

// FindAll lists jobs ordered by title, narrowed by filter.
func (r *jobRepo) FindAll(ctx context.Context, filter models.JobFilter) ([]*models.Job, error) {
	where := db.NewConjunction(r.q.Dialect())
	if filter.MinSalary != nil {
		where.AtLeast("salary", *filter.MinSalary)
	}
	if filter.HasEquity {
		where.Raw("equity > 0")
	}
	if filter.TitleLike != "" {
		where.Contains("title", filter.TitleLike)
	}

	query := sqlSelectJobs + where.Where() + " ORDER BY title"
	rows, err := r.q.Query(ctx, query, where.Args()...)
	if err != nil {
		return nil, fmt.Errorf("repo/job: %w", err)
	}
	defer rows.Close()

	jobs := make([]*models.Job, 0)
	for rows.Next() {
		j := &models.Job{}
		if err := rows.Scan(&j.ID, &j.Title, &j.Salary, &j.Equity, &j.CompanyHandle); err != nil {
			return nil, fmt.Errorf("repo/job: scan: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// Get returns the job with its company. Returns ErrNotFound for unknown ids.
func (r *jobRepo) Get(ctx context.Context, id int64) (*models.JobDetail, error) {
	j := &models.JobDetail{}
	c := &j.Company
	err := r.q.QueryRow(ctx, sqlGetJob, id).Scan(
		&j.ID, &j.Title, &j.Salary, &j.Equity,
		&c.Handle, &c.Name, &c.Description, &c.NumEmployees, &c.LogoURL,
	)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, db.NotFoundf("no job: %d", id)
		}
		return nil, fmt.Errorf("repo/job: %w", err)
	}
	return j, nil
}

// Update applies a partial update to title, salary and equity.
func (r *jobRepo) Update(ctx context.Context, id int64, params models.UpdateJobParams) (*models.Job, error) {
	var data db.Assignments
	if params.Title != nil {
		data = data.Set("title", *params.Title)
	}
	if params.Salary != nil {
		data = data.Set("salary", *params.Salary)
	}
	if params.Equity != nil {
		data = data.Set("equity", *params.Equity)
	}

	set, values, err := db.PartialUpdate(data, nil)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		UPDATE jobs
		SET    %s
		WHERE  id = $%d
		RETURNING %s`, set, len(values)+1, jobColumns)

	j, err := scanJob(r.q.QueryRow(ctx, query, append(values, id)...))
	if db.IsNotFound(err) {
		return nil, db.NotFoundf("no job: %d", id)
	}
	return j, err
}

// Remove deletes a job.
func (r *jobRepo) Remove(ctx context.Context, id int64) error {
	return deleteOne(ctx, r.q, sqlDeleteJob, id, "job")
}

func scanJob(row *db.Row) (*models.Job, error) {
	j := &models.Job{}
	err := row.Scan(&j.ID, &j.Title, &j.Salary, &j.Equity, &j.CompanyHandle)
	if err != nil {
		return nil, fmt.Errorf("repo/job: %w", err)
	}
	return j, nil
}

var _ JobRepository = (*jobRepo)(nil)
