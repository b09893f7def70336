package repo

import (
	"context"
	"fmt"

	"github.com/Skryldev/jobly/db"
	"github.com/Skryldev/jobly/models"
)

// CompanyRepository defines the persistence operations for companies.
type CompanyRepository interface {
	Create(ctx context.Context, params models.CreateCompanyParams) (*models.Company, error)
	FindAll(ctx context.Context, filter models.CompanyFilter) ([]*models.Company, error)
	Get(ctx context.Context, handle string) (*models.CompanyDetail, error)
	Update(ctx context.Context, handle string, params models.UpdateCompanyParams) (*models.Company, error)
	Remove(ctx context.Context, handle string) error
}

type companyRepo struct {
	q db.Querier
}

// NewCompanyRepo returns a CompanyRepository backed by q (*db.DB or *db.Tx).
func NewCompanyRepo(q db.Querier) CompanyRepository {
	return &companyRepo{q: q}
}

// companyAliases maps UpdateCompanyParams field names to columns.
var companyAliases = map[string]string{
	"numEmployees": "num_employees",
	"logoUrl":      "logo_url",
}

const (
	companyColumns = `handle, name, description, num_employees, logo_url`

	sqlCompanyExists = `
		SELECT handle
		FROM   companies
		WHERE  handle = $1`

	sqlInsertCompany = `
		INSERT INTO companies (handle, name, description, num_employees, logo_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + companyColumns

	sqlSelectCompanies = `
		SELECT ` + companyColumns + `
		FROM   companies`

	sqlGetCompany = sqlSelectCompanies + `
		WHERE  handle = $1`

	sqlCompanyJobs = `
		SELECT id, title, salary, equity
		FROM   jobs
		WHERE  company_handle = $1
		ORDER  BY id`

	sqlDeleteCompany = `
		DELETE FROM companies WHERE handle = $1`
)

// Create inserts a company. It fails with ErrDuplicateKey when the handle is
// already taken.
func (r *companyRepo) Create(ctx context.Context, params models.CreateCompanyParams) (*models.Company, error) {
	var existing string
	err := r.q.QueryRow(ctx, sqlCompanyExists, params.Handle).Scan(&existing)
	switch {
	case err == nil:
		return nil, db.Duplicatef("duplicate company: %s", params.Handle)
	case !db.IsNotFound(err):
		return nil, fmt.Errorf("repo/company: %w", err)
	}

	row := r.q.QueryRow(ctx, sqlInsertCompany,
		params.Handle, params.Name, params.Description, params.NumEmployees, params.LogoURL)
	return scanCompany(row)
}

// FindAll lists companies ordered by name, narrowed by filter.
func (r *companyRepo) FindAll(ctx context.Context, filter models.CompanyFilter) ([]*models.Company, error) {
	if filter.MinEmployees != nil && filter.MaxEmployees != nil && *filter.MinEmployees > *filter.MaxEmployees {
		return nil, db.Invalidf("min employees cannot be greater than max")
	}

	where := db.NewConjunction(r.q.Dialect())
	if filter.MinEmployees != nil {
		where.AtLeast("num_employees", *filter.MinEmployees)
	}
	if filter.MaxEmployees != nil {
		where.AtMost("num_employees", *filter.MaxEmployees)
	}
	if filter.NameLike != "" {
		where.Contains("name", filter.NameLike)
	}

	query := sqlSelectCompanies + where.Where() + " ORDER BY name"
	rows, err := r.q.Query(ctx, query, where.Args()...)
	if err != nil {
		return nil, fmt.Errorf("repo/company: %w", err)
	}
	defer rows.Close()

	companies := make([]*models.Company, 0)
	for rows.Next() {
		c := &models.Company{}
		if err := rows.Scan(&c.Handle, &c.Name, &c.Description, &c.NumEmployees, &c.LogoURL); err != nil {
			return nil, fmt.Errorf("repo/company: scan: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// Get returns the company with its jobs. Returns ErrNotFound when no company
// has handle.
func (r *companyRepo) Get(ctx context.Context, handle string) (*models.CompanyDetail, error) {
	c, err := scanCompany(r.q.QueryRow(ctx, sqlGetCompany, handle))
	if err != nil {
		if db.IsNotFound(err) {
			return nil, db.NotFoundf("no company: %s", handle)
		}
		return nil, err
	}

	rows, err := r.q.Query(ctx, sqlCompanyJobs, handle)
	if err != nil {
		return nil, fmt.Errorf("repo/company: jobs: %w", err)
	}
	defer rows.Close()

	detail := &models.CompanyDetail{Company: *c, Jobs: make([]models.JobSummary, 0)}
	for rows.Next() {
		var j models.JobSummary
		if err := rows.Scan(&j.ID, &j.Title, &j.Salary, &j.Equity); err != nil {
			return nil, fmt.Errorf("repo/company: scan job: %w", err)
		}
		detail.Jobs = append(detail.Jobs, j)
	}
	return detail, rows.Err()
}

// Update applies a partial update. Only non-nil fields are written; an empty
// update fails with ErrInvalidRequest.
func (r *companyRepo) Update(ctx context.Context, handle string, params models.UpdateCompanyParams) (*models.Company, error) {
	var data db.Assignments
	if params.Name != nil {
		data = data.Set("name", *params.Name)
	}
	if params.Description != nil {
		data = data.Set("description", *params.Description)
	}
	if params.NumEmployees != nil {
		data = data.Set("numEmployees", *params.NumEmployees)
	}
	if params.LogoURL != nil {
		data = data.Set("logoUrl", *params.LogoURL)
	}

	set, values, err := db.PartialUpdate(data, companyAliases)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		UPDATE companies
		SET    %s
		WHERE  handle = $%d
		RETURNING %s`, set, len(values)+1, companyColumns)

	c, err := scanCompany(r.q.QueryRow(ctx, query, append(values, handle)...))
	if db.IsNotFound(err) {
		return nil, db.NotFoundf("no company: %s", handle)
	}
	return c, err
}

// Remove deletes a company and, through the foreign key, its jobs.
func (r *companyRepo) Remove(ctx context.Context, handle string) error {
	return deleteOne(ctx, r.q, sqlDeleteCompany, handle, "company")
}

func scanCompany(row *db.Row) (*models.Company, error) {
	c := &models.Company{}
	err := row.Scan(&c.Handle, &c.Name, &c.Description, &c.NumEmployees, &c.LogoURL)
	if err != nil {
		return nil, fmt.Errorf("repo/company: %w", err)
	}
	return c, nil
}

var _ CompanyRepository = (*companyRepo)(nil)
