package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storerating-backend/internal/app/service"
)

type StoreController struct {
	storeService service.StoreService
}

func NewStoreController(storeService service.StoreService) *StoreController {
	return &StoreController{
		storeService: storeService,
	}
}

// ListStores returns every store with its overall rating and the caller's own
// GET /api/users/stores?name=&address=&sortField=&sortOrder=
func (ctrl *StoreController) ListStores(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var q service.StoreQuery
	if !bindQuery(c, &q) {
		return
	}
	q.Email = ""

	stores, err := ctrl.storeService.ListForUser(caller.ID, q)
	if err != nil {
		respondError(c, err, "list stores")
		return
	}
	c.JSON(http.StatusOK, stores)
}
