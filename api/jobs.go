package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Skryldev/jobly/models"
)

// POST /jobs { title, salary, equity, companyHandle }
func (h *handlers) createJob(c *gin.Context) {
	var params models.CreateJobParams
	if err := c.ShouldBindJSON(&params); err != nil {
		abortWithError(c, err)
		return
	}
	job, err := h.Jobs.Create(c.Request.Context(), params)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"job": job})
}

// GET /jobs?minSalary=&hasEquity=&title=
//
// hasEquity=false is the same as leaving it out.
func (h *handlers) listJobs(c *gin.Context) {
	if err := onlyQuery(c, "minSalary", "hasEquity", "title"); err != nil {
		abortWithError(c, err)
		return
	}
	var filter models.JobFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		abortWithError(c, err)
		return
	}
	hasEquity, err := boolQuery(c, "hasEquity")
	if err != nil {
		abortWithError(c, err)
		return
	}
	filter.HasEquity = hasEquity != nil && *hasEquity

	jobs, err := h.Jobs.FindAll(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

func (h *handlers) getJob(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	job, err := h.Jobs.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"job": job})
}

func (h *handlers) updateJob(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	var params models.UpdateJobParams
	if err := c.ShouldBindJSON(&params); err != nil {
		abortWithError(c, err)
		return
	}
	job, err := h.Jobs.Update(c.Request.Context(), id, params)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"job": job})
}

func (h *handlers) removeJob(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if err := h.Jobs.Remove(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}
