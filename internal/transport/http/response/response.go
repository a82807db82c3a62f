package response

import "github.com/gin-gonic/gin"

const (
	CodeOK              = 0
	CodeBadRequest      = 40000
	CodeNoFiles         = 40001
	CodePromptOrSession = 40002
	CodeSessionNotFound = 40401
	CodeTooLarge        = 41300
	CodeTooManyRequests = 42900
	CodeInternalServer  = 50000
	CodePersistence     = 50001
	CodeExternalService = 50200
)

type APIResponse struct {
	Code     int         `json:"code"`
	Message  string      `json:"message"`
	Category string      `json:"category,omitempty"`
	Data     interface{} `json:"data,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(200, APIResponse{
		Code:    CodeOK,
		Message: "ok",
		Data:    data,
	})
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
	})
}

// Fail is Error with a category clients can switch on.
func Fail(c *gin.Context, httpStatus, code int, category, message string) {
	c.AbortWithStatusJSON(httpStatus, APIResponse{
		Code:     code,
		Message:  message,
		Category: category,
	})
}
