package controllers

import (
	"net/http"

	"quill/app/models"
	"quill/app/response"
	"quill/app/services"

	"github.com/gorilla/mux"
)

// UserController serves profiles, role changes and follows.
type UserController struct {
	users *services.UserService
	rs    *response.Responder
}

func NewUserController(users *services.UserService, rs *response.Responder) *UserController {
	return &UserController{users: users, rs: rs}
}

func (c *UserController) Show(w http.ResponseWriter, r *http.Request) {
	profile, err := c.users.Profile(principal(r), mux.Vars(r)["userId"])
	if err != nil {
		c.rs.Error(w, r, err)
		return
	}
	body := response.Body{
		"user":      profile.User,
		"followers": profile.Followers,
		"following": profile.Following,
	}
	if profile.IsFollowing != nil {
		body["isFollowing"] = *profile.IsFollowing
	}
	c.rs.Success(w, http.StatusOK, body)
}

type roleInput struct {
	Role models.Role `json:"role"`
}

func (c *UserController) SetRole(w http.ResponseWriter, r *http.Request) {
	var in roleInput
	if err := decodeJSON(r, &in); err != nil {
		c.rs.Error(w, r, err)
		return
	}
	user, err := c.users.SetRole(principal(r), mux.Vars(r)["userId"], in.Role)
	if err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusOK, response.Body{"message": "Role updated successfully", "user": user})
}

func (c *UserController) Follow(w http.ResponseWriter, r *http.Request) {
	if err := c.users.Follow(principal(r), mux.Vars(r)["userId"]); err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusCreated, response.Body{"message": "User followed successfully"})
}

func (c *UserController) Unfollow(w http.ResponseWriter, r *http.Request) {
	if err := c.users.Unfollow(principal(r), mux.Vars(r)["userId"]); err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusOK, response.Body{"message": "User unfollowed successfully"})
}

func (c *UserController) Followers(w http.ResponseWriter, r *http.Request) {
	users, err := c.users.Followers(mux.Vars(r)["userId"])
	if err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusOK, response.Body{"followers": users})
}

func (c *UserController) Following(w http.ResponseWriter, r *http.Request) {
	users, err := c.users.Following(mux.Vars(r)["userId"])
	if err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusOK, response.Body{"following": users})
}
