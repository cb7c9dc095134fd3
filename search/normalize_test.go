package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_Basic(t *testing.T) {
	assert.Equal(t, "hello world", Normalize("Hello, World!"))
	assert.Equal(t, "drone rules", Normalize("  Drone   Rules  "))
	assert.Equal(t, "alcohol limit", Normalize("Alcohol: limit?"))
}

// TestNormalize_PunctuationSet verifies only the fixed punctuation set is
// stripped; hyphens, digits and non-Latin letters survive.
func TestNormalize_PunctuationSet(t *testing.T) {
	assert.Equal(t, "check-in at 9", Normalize("Check-in at 9."))
	assert.Equal(t, "правила для дронов", Normalize("Правила (для дронов)"))
	assert.Equal(t, "", Normalize(".,!?;:()"))
}

func TestNormalize_WhitespaceCollapse(t *testing.T) {
	assert.Equal(t, "a b c", Normalize("a\t b\n\n c"))
	assert.Equal(t, "", Normalize("   "))
	assert.Equal(t, "", Normalize(""))
}

// TestNormalize_Idempotent verifies normalizing twice changes nothing.
func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"Hello, World!", "  a  b  ", "Дрон. Правила!", "already normal"}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "normalization should be idempotent for %q", in)
	}
}
