package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Skryldev/jobly/models"
)

// POST /companies { handle, name, description, numEmployees, logoUrl }
func (h *handlers) createCompany(c *gin.Context) {
	var params models.CreateCompanyParams
	if err := c.ShouldBindJSON(&params); err != nil {
		abortWithError(c, err)
		return
	}
	company, err := h.Companies.Create(c.Request.Context(), params)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"company": company})
}

// GET /companies?minEmployees=&maxEmployees=&nameLike=
func (h *handlers) listCompanies(c *gin.Context) {
	if err := onlyQuery(c, "minEmployees", "maxEmployees", "nameLike"); err != nil {
		abortWithError(c, err)
		return
	}
	var filter models.CompanyFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		abortWithError(c, err)
		return
	}
	companies, err := h.Companies.FindAll(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"companies": companies})
}

func (h *handlers) getCompany(c *gin.Context) {
	company, err := h.Companies.Get(c.Request.Context(), c.Param("handle"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"company": company})
}

func (h *handlers) updateCompany(c *gin.Context) {
	var params models.UpdateCompanyParams
	if err := c.ShouldBindJSON(&params); err != nil {
		abortWithError(c, err)
		return
	}
	company, err := h.Companies.Update(c.Request.Context(), c.Param("handle"), params)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"company": company})
}

func (h *handlers) removeCompany(c *gin.Context) {
	handle := c.Param("handle")
	if err := h.Companies.Remove(c.Request.Context(), handle); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": handle})
}
