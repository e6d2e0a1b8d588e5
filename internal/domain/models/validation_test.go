package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationErrors(t *testing.T) {
	var v ValidationErrors
	assert.NoError(t, v.Err())

	v.Add("name", "is required")
	inner := ValidationErrors{{Field: "axis", Message: "out of range"}}
	v.Merge("rightEye", inner)
	v.Merge("phone", errors.New("bad digits"))

	err := fmt.Errorf("save client: %w", v.Err())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Equal(t, "name: is required; rightEye.axis: out of range; phone: bad digits", v.Error())
}

func TestEnumsAndPages(t *testing.T) {
	assert.True(t, CategoryLens.Valid())
	assert.False(t, ProductCategory("GLASS").Valid())
	assert.True(t, PaymentPix.Valid())
	assert.False(t, PaymentMethod("BARTER").Valid())

	assert.True(t, Page[int]{Page: 0, TotalPages: 2}.HasNext())
	assert.False(t, Page[int]{Page: 1, TotalPages: 2}.HasNext())
}
