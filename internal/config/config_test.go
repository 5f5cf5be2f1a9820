package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("STOREFRONT_ADDR", ":9999")
	t.Setenv("FREE_SHIPPING_THRESHOLD", "750")
	t.Setenv("SHIPPING_FLAT_RATE", "19.50")

	cfg := Load()
	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, "750", cfg.FreeShippingThreshold.String())
	assert.Equal(t, "19.5", cfg.ShippingFlatRate.String())
}

func TestGetdecimalFallsBackOnGarbage(t *testing.T) {
	t.Setenv("SHIPPING_FLAT_RATE", "not-a-number")
	cfg := Load()
	assert.Equal(t, "49.9", cfg.ShippingFlatRate.String())
}
