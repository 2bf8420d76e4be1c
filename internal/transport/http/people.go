package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"trivia-service/internal/app"
	"trivia-service/internal/domain"
)

type peopleHandlers struct {
	service *app.PeopleService
}

type createPersonRequest struct {
	Name   string `json:"name" form:"name" binding:"required,max=100"`
	Age    int    `json:"age" form:"age" binding:"required,gt=0"`
	Gender string `json:"gender" form:"gender" binding:"required,oneof=male female other"`
	Avatar string `json:"avatar" form:"avatar" binding:"omitempty,max=2048"`
}

func (h *peopleHandlers) list(c *gin.Context) {
	filter, err := domain.ParsePeopleFilter(c.Query("gender"))
	if err != nil {
		writeError(c, err)
		return
	}
	order, err := domain.ParsePeopleSort(c.Query("sortBy"), c.Query("sortOrder"))
	if err != nil {
		writeError(c, err)
		return
	}
	people, err := h.service.List(c.Request.Context(), filter, order)
	if err != nil {
		writeError(c, err)
		return
	}
	if people == nil {
		people = []domain.Person{}
	}
	c.JSON(http.StatusOK, people)
}

func (h *peopleHandlers) create(c *gin.Context) {
	var req createPersonRequest
	if err := c.ShouldBind(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}
	p, err := h.service.Create(c.Request.Context(), domain.ProfileUpdate{
		Name:   req.Name,
		Age:    req.Age,
		Gender: domain.Gender(req.Gender),
		Avatar: req.Avatar,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *peopleHandlers) get(c *gin.Context) {
	p, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *peopleHandlers) update(c *gin.Context) {
	var patch domain.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		writeError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}
	p, err := h.service.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *peopleHandlers) delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Person deleted successfully"})
}

func (h *peopleHandlers) increaseScore(c *gin.Context) {
	p, err := h.service.AwardPoints(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
