package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lingualog/internal/logger"
	"github.com/lingualog/internal/service"
)

// SubmitContact 接收课程咨询/报名表单
func (a *API) SubmitContact(c *gin.Context) {
	var input service.ContactInput
	if !bindJSON(c, &input, "Malformed contact payload") {
		return
	}

	submission, err := a.contacts.Submit(input)
	if err != nil {
		a.log.Error("submit contact", logger.String("email", input.Email), logger.Error(err))
		respondTypedError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Submission received", "id": submission.ID})
}

// ListContacts 供管理员分页查看提交记录
func (a *API) ListContacts(c *gin.Context) {
	page := parsePositiveInt(c.DefaultQuery("page", "1"), 1)
	perPage := parsePositiveInt(c.DefaultQuery("limit", "20"), 20)

	result, err := a.contacts.List(page, perPage)
	if err != nil {
		a.log.Error("list contacts", logger.Error(err))
		respondTypedError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"submissions": result.Submissions,
		"total":       result.Total,
		"page":        result.Page,
		"totalPages":  result.TotalPages,
	})
}
