package responses

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/pgroom/pgroom-backend/pkg/errors"
	"github.com/pgroom/pgroom-backend/pkg/types"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) types.ErrorEnvelope {
	t.Helper()
	var envelope types.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestWriteSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var envelope types.SuccessEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, map[string]any{"status": "ok"}, envelope.Data)
}

func TestWriteError(t *testing.T) {
	ctx := context.Background()

	t.Run("validation exposes message and details", func(t *testing.T) {
		rec := httptest.NewRecorder()
		err := pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive").
			WithDetails(map[string]string{"amount": "must be greater than 0"})
		WriteError(ctx, nil, rec, err)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		envelope := decodeError(t, rec)
		assert.Equal(t, string(pkgerrors.CodeValidation), envelope.Error.Code)
		assert.Equal(t, "amount must be positive", envelope.Error.Message)
		assert.NotNil(t, envelope.Error.Details)
	})

	t.Run("security strips message and details", func(t *testing.T) {
		rec := httptest.NewRecorder()
		err := pkgerrors.New(pkgerrors.CodeSecurity, "expected deadbeef got cafebabe").
			WithDetails(map[string]string{"expected": "deadbeef"})
		WriteError(ctx, nil, rec, err)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		envelope := decodeError(t, rec)
		assert.Equal(t, "signature verification failed", envelope.Error.Message)
		assert.Nil(t, envelope.Error.Details)
	})

	t.Run("persistence hides internals", func(t *testing.T) {
		rec := httptest.NewRecorder()
		err := pkgerrors.Wrap(pkgerrors.CodePersistence, fmt.Errorf("pq: duplicate key"), "storing payment")
		WriteError(ctx, nil, rec, err)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		envelope := decodeError(t, rec)
		assert.Equal(t, "storage failure", envelope.Error.Message)
		assert.NotContains(t, rec.Body.String(), "duplicate key")
	})

	t.Run("untagged error maps to internal", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(ctx, nil, rec, fmt.Errorf("boom"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		envelope := decodeError(t, rec)
		assert.Equal(t, string(pkgerrors.CodeInternal), envelope.Error.Code)
	})

	t.Run("nil error still writes an envelope", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(ctx, nil, rec, nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
