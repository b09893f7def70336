package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Skryldev/jobly/models"
)

// POST /users creates a user, admin or not, on behalf of an admin and returns
// a token for the new account.
func (h *handlers) createUser(c *gin.Context) {
	var params models.RegisterUserParams
	if err := c.ShouldBindJSON(&params); err != nil {
		abortWithError(c, err)
		return
	}
	user, err := h.Users.Register(c.Request.Context(), params)
	if err != nil {
		abortWithError(c, err)
		return
	}
	token, err := h.Tokens.Issue(user.Username, user.IsAdmin)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

// GET /users?isAdmin=&username=
func (h *handlers) listUsers(c *gin.Context) {
	if err := onlyQuery(c, "isAdmin", "username"); err != nil {
		abortWithError(c, err)
		return
	}
	var filter models.UserFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		abortWithError(c, err)
		return
	}
	isAdmin, err := boolQuery(c, "isAdmin")
	if err != nil {
		abortWithError(c, err)
		return
	}
	filter.IsAdmin = isAdmin

	users, err := h.Users.FindAll(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *handlers) getUser(c *gin.Context) {
	user, err := h.Users.Get(c.Request.Context(), c.Param("username"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// PATCH /users/:username. Only admins may change isAdmin.
func (h *handlers) updateUser(c *gin.Context) {
	var params models.UpdateUserParams
	if err := c.ShouldBindJSON(&params); err != nil {
		abortWithError(c, err)
		return
	}
	if params.IsAdmin != nil && !currentUser(c).IsAdmin {
		abortWithError(c, errUnauthorized)
		return
	}
	user, err := h.Users.Update(c.Request.Context(), c.Param("username"), params)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *handlers) removeUser(c *gin.Context) {
	username := c.Param("username")
	if err := h.Users.Remove(c.Request.Context(), username); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": username})
}

// POST /users/:username/jobs/:id
func (h *handlers) applyToJob(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if err := h.Users.ApplyToJob(c.Request.Context(), c.Param("username"), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applied": id})
}
