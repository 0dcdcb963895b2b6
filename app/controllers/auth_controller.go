package controllers

import (
	"net/http"

	"quill/app/response"
	"quill/app/services"
)

// AuthController handles registration, login and the current account.
type AuthController struct {
	auth *services.AuthService
	rs   *response.Responder
}

func NewAuthController(auth *services.AuthService, rs *response.Responder) *AuthController {
	return &AuthController{auth: auth, rs: rs}
}

func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		c.rs.Error(w, r, err)
		return
	}
	user, token, err := c.auth.Register(in)
	if err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusCreated, response.Body{
		"message": "User registered successfully",
		"user":    user,
		"token":   token,
	})
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var in services.LoginInput
	if err := decodeJSON(r, &in); err != nil {
		c.rs.Error(w, r, err)
		return
	}
	user, token, err := c.auth.Login(in)
	if err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusOK, response.Body{"token": token, "user": user})
}

func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	user, err := c.auth.Me(principal(r))
	if err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusOK, response.Body{"user": user})
}
