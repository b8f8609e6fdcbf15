package llm

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestClassify_GRPCCodes(t *testing.T) {
	tests := []struct {
		code codes.Code
		want ErrorKind
	}{
		{codes.ResourceExhausted, KindQuota},
		{codes.Unavailable, KindUnavailable},
		{codes.NotFound, KindNotFound},
		{codes.PermissionDenied, KindPermission},
		{codes.InvalidArgument, KindInvalidArgument},
		{codes.Internal, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			err := status.Error(tt.code, "boom")
			assert.Equal(t, tt.want, Classify(err))
		})
	}
}

func TestClassify_WrappedGRPCStatus(t *testing.T) {
	err := fmt.Errorf("generate: %w", status.Error(codes.ResourceExhausted, "slow down"))
	assert.Equal(t, KindQuota, Classify(err))
}

func TestClassify_HTTPCodes(t *testing.T) {
	tests := []struct {
		code int
		want ErrorKind
	}{
		{http.StatusTooManyRequests, KindQuota},
		{http.StatusServiceUnavailable, KindUnavailable},
		{http.StatusNotFound, KindNotFound},
		{http.StatusForbidden, KindPermission},
		{http.StatusBadRequest, KindInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			err := &googleapi.Error{Code: tt.code, Message: "boom"}
			assert.Equal(t, tt.want, Classify(err))
		})
	}
}

func TestClassify_MessageFallback(t *testing.T) {
	assert.Equal(t, KindQuota, Classify(errors.New("Resource exhausted: quota exceeded")))
	assert.Equal(t, KindUnavailable, Classify(errors.New("the model is overloaded")))
	assert.Equal(t, KindUnknown, Classify(errors.New("something odd")))
	assert.Equal(t, KindUnknown, Classify(nil))
}

func TestErrorKind_Transient(t *testing.T) {
	assert.True(t, KindQuota.Transient())
	assert.True(t, KindUnavailable.Transient())
	assert.True(t, KindEmptyResponse.Transient())
	assert.False(t, KindNotFound.Transient())
	assert.False(t, KindPermission.Transient())
	assert.False(t, KindInvalidArgument.Transient())
	assert.False(t, KindUnknown.Transient())
}

func TestServiceError(t *testing.T) {
	cause := errors.New("quota")
	err := fmt.Errorf("call: %w", &ServiceError{Model: "models/a", Kind: KindQuota, Cause: cause})

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindQuota, KindOf(err))
	assert.Contains(t, err.Error(), "models/a")

	var se *ServiceError
	assert.ErrorAs(t, err, &se)
	assert.True(t, se.Transient())
}

func TestModelInfo_SupportsGenerate(t *testing.T) {
	assert.True(t, ModelInfo{Methods: []string{"countTokens", "generateContent"}}.SupportsGenerate())
	assert.False(t, ModelInfo{Methods: []string{"embedContent"}}.SupportsGenerate())
}
