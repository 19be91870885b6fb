package response

import (
	"errors"
	"net/http"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestValidationError(t *testing.T) {
	type form struct {
		Email    string `validate:"required,email"`
		Password string `validate:"required,min=8"`
	}

	err := validator.New().Struct(form{Email: "nope", Password: "short"})
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))
	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "field Email must be a valid email address, field Password must be at least 8 characters", resp.Message)
}

func TestError(t *testing.T) {
	assert.Equal(t, ErrorResponse{Status: "Error", Message: "Invalid credentials"}, Error("Invalid credentials"))
	assert.Equal(t, Response{Status: "OK"}, OK())
}

func TestFromGRPC(t *testing.T) {
	tests := []struct {
		err      error
		wantCode int
		wantMsg  string
	}{
		{status.Error(codes.Unauthenticated, "invalid credentials"), http.StatusUnauthorized, "Invalid credentials"},
		{status.Error(codes.AlreadyExists, "user exists"), http.StatusConflict, "user exists"},
		{status.Error(codes.InvalidArgument, "business name is required"), http.StatusUnprocessableEntity, "business name is required"},
		{status.Error(codes.Unavailable, "conn refused"), http.StatusServiceUnavailable, "service temporarily unavailable, please try again"},
		{status.Error(codes.Internal, "pq: boom"), http.StatusInternalServerError, "internal error"},
		{errors.New("plain"), http.StatusInternalServerError, "internal error"},
	}
	for _, tt := range tests {
		code, body := FromGRPC(tt.err)
		assert.Equal(t, tt.wantCode, code)
		assert.Equal(t, tt.wantMsg, body.Message)
	}
}
