package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutcome_Operational(t *testing.T) {
	operational := map[Outcome]bool{
		OutcomeUnauthorized: true,
		OutcomeUnavailable:  true,
	}

	for _, o := range Outcomes {
		assert.Equal(t, operational[o], o.Operational(), string(o))
	}
}

func TestOutcomes_Distinct(t *testing.T) {
	seen := make(map[Outcome]bool)
	for _, o := range Outcomes {
		assert.False(t, seen[o], string(o))
		seen[o] = true
	}
	assert.Len(t, seen, 9)
}
