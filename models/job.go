package models

// Job represents a row in the "jobs" table.
type Job struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	Salary        *int     `json:"salary"`
	Equity        *float64 `json:"equity"`
	CompanyHandle string   `json:"companyHandle"`
}

// JobSummary is the job shape embedded in a company.
type JobSummary struct {
	ID     int64    `json:"id"`
	Title  string   `json:"title"`
	Salary *int     `json:"salary"`
	Equity *float64 `json:"equity"`
}

// JobDetail is a job together with the company offering it.
type JobDetail struct {
	ID      int64    `json:"id"`
	Title   string   `json:"title"`
	Salary  *int     `json:"salary"`
	Equity  *float64 `json:"equity"`
	Company Company  `json:"company"`
}

// CreateJobParams holds the fields required to post a job.
type CreateJobParams struct {
	Title         string   `json:"title" binding:"required,min=1"`
	Salary        *int     `json:"salary" binding:"omitempty,min=0"`
	Equity        *float64 `json:"equity" binding:"omitempty,min=0,max=1"`
	CompanyHandle string   `json:"companyHandle" binding:"required,min=1,max=25"`
}

// UpdateJobParams holds the fields a partial update may change. Neither the
// id nor the owning company can be changed.
type UpdateJobParams struct {
	Title  *string  `json:"title" binding:"omitempty,min=1"`
	Salary *int     `json:"salary" binding:"omitempty,min=0"`
	Equity *float64 `json:"equity" binding:"omitempty,min=0,max=1"`
}

// JobFilter narrows Job listings. HasEquity set to false is the same as
// leaving it unset.
type JobFilter struct {
	MinSalary *int   `form:"minSalary" binding:"omitempty,min=0"`
	HasEquity bool   `form:"-"`
	TitleLike string `form:"title"`
}
