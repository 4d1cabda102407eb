package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("row not found")
	err := Wrap(CodeNotFound, cause, "stock item missing")

	require.True(t, IsCode(err, CodeNotFound))
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "stock item missing")
}

func TestAsUnwrapsThroughFmtErrorf(t *testing.T) {
	inner := New(CodeConcurrency, "version conflict")
	wrapped := fmt.Errorf("adjust failed: %w", inner)

	typed := As(wrapped)
	require.NotNil(t, typed)
	require.Equal(t, CodeConcurrency, typed.Code())

	require.Nil(t, As(stdErrors.New("plain")))
}

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	meta := MetadataFor(Code("NO_SUCH_CODE"))
	require.Equal(t, http.StatusInternalServerError, meta.HTTPStatus)
}

func TestDetailsGatedByMetadata(t *testing.T) {
	require.True(t, MetadataFor(CodeCyclicRecipe).DetailsAllowed)
	require.True(t, MetadataFor(CodePartialConsumption).DetailsAllowed)
	require.False(t, MetadataFor(CodeConflict).DetailsAllowed)
}

func TestDumpCollectsChain(t *testing.T) {
	cause := stdErrors.New("disk full")
	err := Wrap(CodeInternal, cause, "write failed")

	dump := Dump(err)
	require.Equal(t, CodeInternal, dump.Code)
	require.GreaterOrEqual(t, len(dump.Chain), 2)
}
