package Ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSplitSingleMethod(t *testing.T) {
	require.NoError(t, ValidateSplit(5000, MethodCash, 5000, 0, 0))
	require.NoError(t, ValidateSplit(5000, MethodBank, 0, 5000, 0))
	require.NoError(t, ValidateSplit(5000, MethodCredit, 0, 0, 5000))
}

func TestValidateSplitMismatch(t *testing.T) {
	err := ValidateSplit(5000, MethodCash, 4000, 0, 0)
	require.Error(t, err)

	var mismatch *SplitMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, int64(5000), mismatch.Expected)
	assert.Equal(t, int64(4000), mismatch.Actual)
}

func TestValidateSplitSingleMethodRejectsOtherAmounts(t *testing.T) {
	// Full cash amount but a stray bank amount still fails.
	err := ValidateSplit(5000, MethodCash, 5000, 100, 0)
	var mismatch *SplitMismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestValidateSplitMixed(t *testing.T) {
	require.NoError(t, ValidateSplit(10000, MethodMixed, 2500, 5000, 2500))

	err := ValidateSplit(10000, MethodMixed, 2500, 5000, 2000)
	var mismatch *SplitMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, int64(10000), mismatch.Expected)
	assert.Equal(t, int64(9500), mismatch.Actual)
}

func TestValidateSplitNegativeSubAmount(t *testing.T) {
	err := ValidateSplit(1000, MethodMixed, 1500, -500, 0)
	var mismatch *SplitMismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestValidateSplitNonPositiveTotal(t *testing.T) {
	assert.ErrorIs(t, ValidateSplit(0, MethodCash, 0, 0, 0), ErrInvalidAmount)
	assert.ErrorIs(t, ValidateSplit(-100, MethodCash, 100, 0, 0), ErrInvalidAmount)
}

func TestValidateSplitUnknownMethod(t *testing.T) {
	assert.Error(t, ValidateSplit(100, PaymentMethod("CHEQUE"), 100, 0, 0))
}
