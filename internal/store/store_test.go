package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	assert.ErrorIs(t, Translate(gorm.ErrRecordNotFound), ErrNotFound)
	assert.ErrorIs(t, Translate(fmt.Errorf("load: %w", gorm.ErrRecordNotFound)), ErrNotFound)

	other := errors.New("connection reset")
	assert.Equal(t, other, Translate(other))
	assert.NoError(t, Translate(nil))
}

func TestLimits_Clamp(t *testing.T) {
	l := Limits{Default: 50, Min: 1, Max: 200}
	tests := map[string]int{
		"":      50,
		"abc":   50,
		"0":     1,
		"-5":    1,
		"1":     1,
		"120":   120,
		"200":   200,
		"99999": 200,
	}
	for raw, want := range tests {
		assert.Equal(t, want, l.Clamp(raw), "Clamp(%q)", raw)
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Offset(""))
	assert.Equal(t, 0, Offset("-3"))
	assert.Equal(t, 40, Offset("40"))
}
