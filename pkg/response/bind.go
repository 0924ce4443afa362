package response

import (
	"errors"
	"io"

	"anoa.com/droneanalytics/pkg/apperror"
	"anoa.com/droneanalytics/pkg/validator"
	"github.com/gin-gonic/gin"
)

// BindJSON decodes the request body into dst. An empty body leaves dst zeroed
// so field validation can report what is missing; any other decoding failure
// becomes a validation error carrying message.
func BindJSON(c *gin.Context, dst any, message string) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperror.Validation(message, []string{validator.DescribeDecodeError(err)})
	}
	return nil
}

// BindQuery binds query string parameters into dst.
func BindQuery(c *gin.Context, dst any) error {
	if err := c.ShouldBindQuery(dst); err != nil {
		return apperror.Validation("Invalid query parameters", validator.BindingMessages(err))
	}
	return nil
}

// BindURI binds path parameters into dst.
func BindURI(c *gin.Context, dst any) error {
	if err := c.ShouldBindUri(dst); err != nil {
		return apperror.Validation("Invalid path parameters", validator.BindingMessages(err))
	}
	return nil
}
