package controllers

import (
	"net/http"

	"quill/app/response"
	"quill/app/services"

	"github.com/gorilla/mux"
)

// CommentController handles HTTP requests for a post's comment thread.
type CommentController struct {
	comments *services.CommentService
	rs       *response.Responder
}

func NewCommentController(comments *services.CommentService, rs *response.Responder) *CommentController {
	return &CommentController{comments: comments, rs: rs}
}

type commentInput struct {
	Content string `json:"content"`
}

func (c *CommentController) Index(w http.ResponseWriter, r *http.Request) {
	tree, err := c.comments.List(mux.Vars(r)["postId"])
	if err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusOK, response.Body{"comments": tree})
}

func (c *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	var in commentInput
	if err := decodeJSON(r, &in); err != nil {
		c.rs.Error(w, r, err)
		return
	}
	comment, err := c.comments.Create(principal(r), mux.Vars(r)["postId"], in.Content)
	if err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusCreated, response.Body{"message": "Comment created successfully", "comment": comment})
}

func (c *CommentController) Reply(w http.ResponseWriter, r *http.Request) {
	var in commentInput
	if err := decodeJSON(r, &in); err != nil {
		c.rs.Error(w, r, err)
		return
	}
	vars := mux.Vars(r)
	comment, err := c.comments.Reply(principal(r), vars["postId"], vars["commentId"], in.Content)
	if err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusCreated, response.Body{"message": "Reply created successfully", "comment": comment})
}

func (c *CommentController) Update(w http.ResponseWriter, r *http.Request) {
	var in commentInput
	if err := decodeJSON(r, &in); err != nil {
		c.rs.Error(w, r, err)
		return
	}
	vars := mux.Vars(r)
	comment, err := c.comments.Update(principal(r), vars["postId"], vars["commentId"], in.Content)
	if err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusOK, response.Body{"message": "Comment updated successfully", "comment": comment})
}

func (c *CommentController) Delete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := c.comments.Delete(principal(r), vars["postId"], vars["commentId"]); err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusOK, response.Body{"message": "Comment deleted successfully"})
}

func (c *CommentController) Pin(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	post, err := c.comments.Pin(principal(r), vars["postId"], vars["commentId"])
	if err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusOK, response.Body{"message": "Comment pinned successfully", "post": post})
}

func (c *CommentController) Unpin(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	post, err := c.comments.Unpin(principal(r), vars["postId"], vars["commentId"])
	if err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusOK, response.Body{"message": "Comment unpinned successfully", "post": post})
}

func (c *CommentController) Like(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	count, err := c.comments.Like(principal(r), vars["postId"], vars["commentId"])
	if err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusCreated, response.Body{"message": "Comment liked", "likeCount": count})
}

func (c *CommentController) Unlike(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	count, err := c.comments.Unlike(principal(r), vars["postId"], vars["commentId"])
	if err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusOK, response.Body{"message": "Comment unliked", "likeCount": count})
}
