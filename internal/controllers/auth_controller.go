package controllers

import (
	"net/http"

	"eventhub-be/internal/models"
	"eventhub-be/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

// Register handles POST /api/auth/register
func (ac *AuthController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !bindJSON(c, &req, "Please enter all required fields") {
		return
	}

	response, err := ac.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// Login handles POST /api/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req, "Please enter all fields") {
		return
	}

	response, err := ac.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Me handles GET /api/auth/me
func (ac *AuthController) Me(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, models.UserResponse{
		ID:       id.ID,
		Name:     id.Name,
		Email:    id.Email,
		PhotoURL: id.PhotoURL,
	})
}
