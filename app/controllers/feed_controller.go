package controllers

import (
	"net/http"

	"quill/app/response"
	"quill/app/services"
)

type FeedController struct {
	feed *services.FeedService
	rs   *response.Responder
}

func NewFeedController(feed *services.FeedService, rs *response.Responder) *FeedController {
	return &FeedController{feed: feed, rs: rs}
}

func (c *FeedController) Index(w http.ResponseWriter, r *http.Request) {
	page, err := c.feed.Feed(r.Context(), principal(r), queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		c.rs.Error(w, r, err)
		return
	}
	c.rs.Success(w, http.StatusOK, response.Body{"feed": page})
}
