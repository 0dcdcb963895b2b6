package controllers

import (
	"net/http"

	"quill/app/repositories"
	"quill/app/response"
	"quill/app/services"

	"github.com/gorilla/mux"
)

// PostController handles HTTP requests for blog posts, their likes and
// their reports.
type PostController struct {
	posts   *services.PostService
	reports *services.ReportService
	rs      *response.Responder
}

func NewPostController(posts *services.PostService, reports *services.ReportService, rs *response.Responder) *PostController {
	return &PostController{posts: posts, reports: reports, rs: rs}
}

// Index lists posts. Filters: tag, category, author, q; sort=recent|popular.
func (c *PostController) Index(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := c.posts.List(r.Context(), services.PostQuery{
		Page:  queryInt(r, "page"),
		Limit: queryInt(r, "limit"),
		PostFilter: repositories.PostFilter{
			TagID:      q.Get("tag"),
			CategoryID: q.Get("category"),
			AuthorID:   q.Get("author"),
			Query:      q.Get("q"),
			Sort:       repositories.PostSort(q.Get("sort")),
		},
	})
	if err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusOK, response.Body{"posts": page.Posts, "pagination": page.Pagination})
}

func (c *PostController) Popular(w http.ResponseWriter, r *http.Request) {
	posts, err := c.posts.Popular(r.Context(), queryInt(r, "limit"))
	if err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusOK, response.Body{"posts": posts})
}

func (c *PostController) Show(w http.ResponseWriter, r *http.Request) {
	post, err := c.posts.Get(r.Context(), principal(r), mux.Vars(r)["postId"])
	if err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusOK, response.Body{"post": post})
}

func (c *PostController) Create(w http.ResponseWriter, r *http.Request) {
	var in services.PostInput
	if err := decodeJSON(r, &in); err != nil {
		c.rs.Error(w, r, err)
		return
	}
	post, err := c.posts.Create(r.Context(), principal(r), in)
	if err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusCreated, response.Body{"message": "Post created successfully", "post": post})
}

func (c *PostController) Update(w http.ResponseWriter, r *http.Request) {
	var in services.PostInput
	if err := decodeJSON(r, &in); err != nil {
		c.rs.Error(w, r, err)
		return
	}
	post, err := c.posts.Update(r.Context(), principal(r), mux.Vars(r)["postId"], in)
	if err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusOK, response.Body{"message": "Post updated successfully", "post": post})
}

func (c *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.posts.Delete(principal(r), mux.Vars(r)["postId"]); err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusOK, response.Body{"message": "Post deleted successfully"})
}

func (c *PostController) Like(w http.ResponseWriter, r *http.Request) {
	count, err := c.posts.Like(principal(r), mux.Vars(r)["postId"])
	if err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusCreated, response.Body{"message": "Post liked", "likeCount": count})
}

func (c *PostController) Unlike(w http.ResponseWriter, r *http.Request) {
	count, err := c.posts.Unlike(principal(r), mux.Vars(r)["postId"])
	if err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusOK, response.Body{"message": "Post unliked", "likeCount": count})
}

func (c *PostController) Report(w http.ResponseWriter, r *http.Request) {
	var in services.ReportInput
	if err := decodeJSON(r, &in); err != nil {
		c.rs.Error(w, r, err)
		return
	}
	report, err := c.reports.Create(principal(r), mux.Vars(r)["postId"], in)
	if err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusCreated, response.Body{"message": "Post reported successfully", "report": report})
}
