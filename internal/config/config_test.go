package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBcryptCostDefault(t *testing.T) {
	t.Setenv("BCRYPT_COST", "")
	assert.Equal(t, 12, BcryptCost())
}

func TestBcryptCostFromEnv(t *testing.T) {
	t.Setenv("BCRYPT_COST", "14")
	assert.Equal(t, 14, BcryptCost())
}
