package models

// Company represents a row in the "companies" table.
type Company struct {
	Handle       string  `json:"handle"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	NumEmployees *int    `json:"numEmployees"`
	LogoURL      *string `json:"logoUrl"`
}

// CompanyDetail is a company together with its job postings.
type CompanyDetail struct {
	Company
	Jobs []JobSummary `json:"jobs"`
}

// CreateCompanyParams holds the fields required to create a company.
type CreateCompanyParams struct {
	Handle       string  `json:"handle" binding:"required,min=1,max=25,lowercase"`
	Name         string  `json:"name" binding:"required,min=1"`
	Description  string  `json:"description" binding:"required"`
	NumEmployees *int    `json:"numEmployees" binding:"omitempty,min=0"`
	LogoURL      *string `json:"logoUrl" binding:"omitempty,url"`
}

// UpdateCompanyParams holds the fields a partial update may change. The
// handle is the key and cannot be changed.
type UpdateCompanyParams struct {
	Name         *string `json:"name" binding:"omitempty,min=1"`
	Description  *string `json:"description"`
	NumEmployees *int    `json:"numEmployees" binding:"omitempty,min=0"`
	LogoURL      *string `json:"logoUrl" binding:"omitempty,url"`
}

// CompanyFilter narrows Company listings. Unset fields are not applied.
type CompanyFilter struct {
	MinEmployees *int   `form:"minEmployees" binding:"omitempty,min=0"`
	MaxEmployees *int   `form:"maxEmployees" binding:"omitempty,min=0"`
	NameLike     string `form:"nameLike"`
}
