package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hall-booking/internal/pricing"
)

func runRoot(args ...string) (string, error) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSuggestPriceCmd(t *testing.T) {
	out, err := runRoot("suggest-price", "--base", "100", "--at", "2030-06-08T10:00:00Z", "--capacity", "300")
	require.NoError(t, err)

	var got suggestOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	// Saturday 1.2 x large venue 1.1
	assert.Equal(t, 132.0, got.SuggestedPrice)
	assert.Equal(t, pricing.ReasonPremium, got.Reason)
	assert.Equal(t, 300, got.Capacity)
}

func TestSuggestPriceCmd_Errors(t *testing.T) {
	_, err := runRoot("suggest-price", "--base", "100", "--at", "tomorrow")
	assert.Error(t, err)

	_, err = runRoot("suggest-price", "--base=-5", "--at", "2030-06-08T10:00:00Z")
	assert.ErrorIs(t, err, pricing.ErrInvalidInput)

	_, err = runRoot("suggest-price")
	assert.Error(t, err, "base is required")
}
