package controllers

import (
	"net/http"

	"quill/app/response"
	"quill/app/services"

	"github.com/gorilla/mux"
)

type TagController struct {
	tags *services.TagService
	rs   *response.Responder
}

func NewTagController(tags *services.TagService, rs *response.Responder) *TagController {
	return &TagController{tags: tags, rs: rs}
}

func (c *TagController) Index(w http.ResponseWriter, r *http.Request) {
	tags, err := c.tags.List()
	if err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusOK, response.Body{"tags": tags})
}

func (c *TagController) Show(w http.ResponseWriter, r *http.Request) {
	tag, err := c.tags.Get(mux.Vars(r)["tagId"])
	if err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusOK, response.Body{"tag": tag})
}

func (c *TagController) Create(w http.ResponseWriter, r *http.Request) {
	var in services.TagInput
	if err := decodeJSON(r, &in); err != nil {
		c.rs.Error(w, r, err)
		return
	}
	tag, err := c.tags.Create(principal(r), in)
	if err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusCreated, response.Body{"message": "Tag created successfully", "tag": tag})
}

func (c *TagController) Update(w http.ResponseWriter, r *http.Request) {
	var in services.TagInput
	if err := decodeJSON(r, &in); err != nil {
		c.rs.Error(w, r, err)
		return
	}
	tag, err := c.tags.Update(principal(r), mux.Vars(r)["tagId"], in)
	if err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusOK, response.Body{"message": "Tag updated successfully", "tag": tag})
}

func (c *TagController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.tags.Delete(principal(r), mux.Vars(r)["tagId"]); err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusOK, response.Body{"message": "Tag deleted successfully"})
}

type CategoryController struct {
	categories *services.CategoryService
	rs         *response.Responder
}

func NewCategoryController(categories *services.CategoryService, rs *response.Responder) *CategoryController {
	return &CategoryController{categories: categories, rs: rs}
}

func (c *CategoryController) Index(w http.ResponseWriter, r *http.Request) {
	categories, err := c.categories.List()
	if err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusOK, response.Body{"categories": categories})
}

func (c *CategoryController) Show(w http.ResponseWriter, r *http.Request) {
	category, err := c.categories.Get(mux.Vars(r)["categoryId"])
	if err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusOK, response.Body{"category": category})
}

func (c *CategoryController) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CategoryInput
	if err := decodeJSON(r, &in); err != nil {
		c.rs.Error(w, r, err)
		return
	}
	category, err := c.categories.Create(principal(r), in)
	if err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusCreated, response.Body{"message": "Category created successfully", "category": category})
}

func (c *CategoryController) Update(w http.ResponseWriter, r *http.Request) {
	var in services.CategoryInput
	if err := decodeJSON(r, &in); err != nil {
		c.rs.Error(w, r, err)
		return
	}
	category, err := c.categories.Update(principal(r), mux.Vars(r)["categoryId"], in)
	if err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusOK, response.Body{"message": "Category updated successfully", "category": category})
}

func (c *CategoryController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.categories.Delete(principal(r), mux.Vars(r)["categoryId"]); err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusOK, response.Body{"message": "Category deleted successfully"})
}
