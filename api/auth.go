package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Skryldev/jobly/models"
)

// POST /auth/token { username, password } => { token }
func (h *handlers) token(c *gin.Context) {
	var creds models.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		abortWithError(c, err)
		return
	}
	user, err := h.Users.Authenticate(c.Request.Context(), creds.Username, creds.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}
	token, err := h.Tokens.Issue(user.Username, user.IsAdmin)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// POST /auth/register { user } => { token }
//
// Self-registered users are never admins.
func (h *handlers) register(c *gin.Context) {
	var params models.RegisterUserParams
	if err := c.ShouldBindJSON(&params); err != nil {
		abortWithError(c, err)
		return
	}
	params.IsAdmin = false

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
	c.JSON(http.StatusCreated, gin.H{"token": token})
}
