package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisabledClient(t *testing.T) {
	_, err := Disabled{}.Complete(context.Background(), "persona", nil, "hi")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNewGeminiRequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
