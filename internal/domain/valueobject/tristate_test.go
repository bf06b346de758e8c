package valueobject_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phishsense/phishsense/internal/domain/valueobject"
)

func TestTriState_Encoding(t *testing.T) {
	assert.Equal(t, 1.0, valueobject.True.Feature())
	assert.Equal(t, -1.0, valueobject.False.Feature())
	assert.Equal(t, 0.0, valueobject.Unknown.Feature())

	assert.False(t, valueobject.Unknown.IsKnown())
	assert.False(t, valueobject.Unknown.IsTrue())
	assert.False(t, valueobject.Unknown.IsFalse())
	assert.True(t, valueobject.TriStateOf(true).IsTrue())
	assert.True(t, valueobject.TriStateOf(false).IsFalse())
}

func TestTriState_JSONRoundTrip(t *testing.T) {
	for _, s := range []valueobject.TriState{valueobject.True, valueobject.False, valueobject.Unknown} {
		data, err := json.Marshal(s)
		require.NoError(t, err)

		var decoded valueobject.TriState
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, s, decoded)
	}

	var s valueobject.TriState
	assert.Error(t, json.Unmarshal([]byte(`"maybe"`), &s))
}

func TestDomainAge(t *testing.T) {
	days, known := valueobject.UnknownDomainAge.Days()
	assert.False(t, known)
	assert.Equal(t, 0, days)
	assert.Equal(t, float64(valueobject.MedianDomainAgeDays), valueobject.UnknownDomainAge.Feature())
	assert.Equal(t, "unknown", valueobject.UnknownDomainAge.String())

	age := valueobject.DomainAgeOf(12)
	assert.True(t, age.IsKnown())
	assert.Equal(t, 12.0, age.Feature())

	assert.Equal(t, 0.0, valueobject.DomainAgeOf(-4).Feature())
}

func TestVerdictFromScore(t *testing.T) {
	assert.Equal(t, valueobject.VerdictLegitimate, valueobject.VerdictFromScore(0.4999))
	assert.Equal(t, valueobject.VerdictPhishing, valueobject.VerdictFromScore(0.5))

	assert.True(t, valueobject.VerdictOf(true).IsPhishing())
	assert.Equal(t, "LEGITIMATE", valueobject.VerdictOf(false).String())
}
