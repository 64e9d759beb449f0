package health

import (
	"context"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"

	"contafeira/internal/utils/logger"
)

func TestHandler_healthCheck(t *testing.T) {
	handler := NewHandler(logger.Discard(), huma.Middlewares{})

	output, err := handler.healthCheck(context.Background(), &Input{})

	assert.NoError(t, err)
	assert.NotNil(t, output)
	assert.Equal(t, "OK", output.Body.Status)
}

func TestNewHandler(t *testing.T) {
	handler := NewHandler(logger.Discard(), huma.Middlewares{})

	assert.NotNil(t, handler)
	assert.NotNil(t, handler.log)
}
