package controllers

import (
	"errors"
	"net/http"

	"quill/app/apperr"
	"quill/app/authz"
	"quill/app/response"
	"quill/app/services"

	"github.com/gorilla/mux"
)

// multipartSlack covers the multipart framing around the file itself.
const multipartSlack = 64 << 10

// UploadController accepts image uploads as multipart forms.
type UploadController struct {
	uploads *services.UploadService
	rs      *response.Responder
}

func NewUploadController(uploads *services.UploadService, rs *response.Responder) *UploadController {
	return &UploadController{uploads: uploads, rs: rs}
}

// Create stores the file sent in the "image" form field.
func (c *UploadController) Create(w http.ResponseWriter, r *http.Request) {
	if err := authz.RequireAuth(principal(r)); err != nil {
		c.rs.Error(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, c.uploads.MaxBytes()+multipartSlack)
	file, _, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			c.rs.Error(w, r, apperr.BadRequest("File is too large"))
		case errors.Is(err, http.ErrMissingFile):
			c.rs.Error(w, r, apperr.BadRequest("Image file is required"))
		default:
			c.rs.Error(w, r, apperr.BadRequest("Invalid multipart form"))
		}
		return
	}
	defer file.Close()

	image, err := c.uploads.Upload(r.Context(), principal(r), file)
	if err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusCreated, response.Body{"message": "Image uploaded successfully", "image": image})
}

func (c *UploadController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.uploads.Delete(r.Context(), principal(r), mux.Vars(r)["imageId"]); err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusOK, response.Body{"message": "Image deleted successfully"})
}
