package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storerating-backend/internal/app/service"
)

type RatingController struct {
	ratingService service.RatingService
}

func NewRatingController(ratingService service.RatingService) *RatingController {
	return &RatingController{
		ratingService: ratingService,
	}
}

// Submit POST /api/ratings
func (ctrl *RatingController) Submit(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req service.RatingInput
	if !bindJSON(c, &req) {
		return
	}

	rating, err := ctrl.ratingService.Submit(caller.ID, req)
	if err != nil {
		respondError(c, err, "submit rating")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Rating submitted successfully",
		"rating":  rating,
	})
}

// Modify PUT /api/ratings
func (ctrl *RatingController) Modify(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req service.RatingInput
	if !bindJSON(c, &req) {
		return
	}

	rating, err := ctrl.ratingService.Modify(caller.ID, req)
	if err != nil {
		respondError(c, err, "modify rating")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Rating updated successfully",
		"rating":  rating,
	})
}
