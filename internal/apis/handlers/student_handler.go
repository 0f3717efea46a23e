package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hq040506/DL-student-assistant/internal/apis/dtos"
	"github.com/hq040506/DL-student-assistant/internal/services"
)

type StudentHandler struct {
	studentService services.StudentService
}

func NewStudentHandler(studentService services.StudentService) *StudentHandler {
	return &StudentHandler{
		studentService: studentService,
	}
}

// List returns students narrowed by the optional college, major, class_name, grade and gender filters.
func (h *StudentHandler) List(c *gin.Context) {
	var req dtos.StudentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		errorMsg := err.Error()
		c.JSON(http.StatusBadRequest, dtos.Response{
			Success: false,
			Error:   &errorMsg,
		})
		return
	}

	response, statusCode, err := h.studentService.List(c.Request.Context(), &req)
	if err != nil {
		errorMsg := err.Error()
		c.JSON(int(statusCode), dtos.Response{
			Success: false,
			Error:   &errorMsg,
		})
		return
	}

	c.JSON(int(statusCode), dtos.Response{
		Success: true,
		Data:    response,
	})
}

func (h *StudentHandler) GetByName(c *gin.Context) {
	response, statusCode, err := h.studentService.GetByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		errorMsg := err.Error()
		c.JSON(int(statusCode), dtos.Response{
			Success: false,
			Error:   &errorMsg,
		})
		return
	}

	c.JSON(int(statusCode), dtos.Response{
		Success: true,
		Data:    response,
	})
}
