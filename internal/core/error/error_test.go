package errx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrom(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "plain error becomes internal",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    SystemErrorMessage,
		},
		{
			name:       "app error passes through",
			err:        New(errors.New("bad"), http.StatusBadRequest, "bad input"),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "bad input",
		},
		{
			name:       "wrapped app error is unwrapped",
			err:        fmt.Errorf("handler: %w", GenerationFailure(errors.New("timeout"))),
			wantStatus: http.StatusBadGateway,
			wantMsg:    GenerationFailedMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ae := From(tt.err)
			require.NotNil(t, ae)
			assert.Equal(t, tt.wantStatus, ae.Status)
			assert.Equal(t, tt.wantMsg, ae.Message)
		})
	}
}

func TestFromNil(t *testing.T) {
	assert.Nil(t, From(nil))
}

func TestWrapRedis(t *testing.T) {
	assert.NoError(t, WrapRedis(nil))

	notFound := From(WrapRedis(redis.Nil))
	assert.Equal(t, http.StatusNotFound, notFound.Status)

	failed := From(WrapRedis(errors.New("connection refused")))
	assert.Equal(t, http.StatusBadGateway, failed.Status)
	assert.Equal(t, RedisErrorMessage, failed.Message)
}

func TestAppErrorIs(t *testing.T) {
	sentinel := errors.New("sentinel")
	ae := New(sentinel, http.StatusBadRequest, "bad")
	assert.True(t, errors.Is(ae, sentinel))
}

func TestInvalidQueryMessage(t *testing.T) {
	ae := InvalidQuery(errors.New("query must not be empty"))
	assert.Equal(t, http.StatusBadRequest, ae.Status)
	assert.Equal(t, "query must not be empty", ae.Message)

	ae = InvalidQuery(nil)
	assert.Equal(t, InvalidQueryMessage, ae.Message)
}
