package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"kanso/internal/config"
)

func TestIsEnabledDropsUnlistedProperties(t *testing.T) {
	cfg := config.New()
	cfg.EnabledProperties["HasSourceBlocks"] = true

	r := New()
	assert.True(t, r.IsEnabled("HasSourceBlocks", cfg))
	assert.False(t, r.IsEnabled("NoInitClassInstructions", cfg), "properties outside the enabled set must be dropped")
}

func TestInitialAndFinalSets(t *testing.T) {
	cfg := config.New()
	cfg.InitialProperties["HasSourceBlocks"] = true
	cfg.FinalProperties["NoInitClassInstructions"] = true

	r := New()
	assert.True(t, r.InitialSet(cfg)["HasSourceBlocks"])
	assert.True(t, r.FinalSet(cfg)["NoInitClassInstructions"])
}

func TestRegisterCustomProperty(t *testing.T) {
	r := New()
	assert.False(t, r.IsRegistered("RanFooPass"), "RanFooPass should not be known yet")
	r.Register("RanFooPass")
	assert.True(t, r.IsRegistered("RanFooPass"), "RanFooPass should be known after Register")
}
