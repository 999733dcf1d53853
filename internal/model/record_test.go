package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate_Layouts(t *testing.T) {
	tests := []struct {
		in   string
		want Date
		ok   bool
	}{
		{"23/05/2025", NewDate(2025, time.May, 23), true},
		{"3/4/2025", NewDate(2025, time.April, 3), true},
		{"03-04-2025", NewDate(2025, time.April, 3), true},
		{"2025-05-23", NewDate(2025, time.May, 23), true},
		{"2025-05-23 14:30:00", NewDate(2025, time.May, 23), true},
		{"23/05/2025 08:15", NewDate(2025, time.May, 23), true},
		{"  ", Date{}, false},
		{"not a date", Date{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDate(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.True(t, tt.want.Equal(got.Time), "got %s want %s", got, tt.want)
		})
	}
}

func TestDate_JSON(t *testing.T) {
	b, err := json.Marshal(NewDate(2025, time.June, 1))
	require.NoError(t, err)
	assert.Equal(t, `"2025-06-01"`, string(b))

	b, err = json.Marshal(Date{})
	require.NoError(t, err)
	assert.Equal(t, `""`, string(b))

	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2025-06-01"`), &d))
	assert.Equal(t, "2025-06-01", d.String())

	require.NoError(t, json.Unmarshal([]byte(`""`), &d))
	assert.False(t, d.IsSet())

	assert.Error(t, json.Unmarshal([]byte(`"garbage"`), &d))
}

func TestLocationConfig_Contains(t *testing.T) {
	may1 := NewDate(2025, time.May, 1)
	may10 := NewDate(2025, time.May, 10)
	may20 := NewDate(2025, time.May, 20)

	both := LocationConfig{Start: may1, End: may10}
	assert.True(t, both.Contains(may1), "start bound is inclusive")
	assert.True(t, both.Contains(may10), "end bound is inclusive")
	assert.False(t, both.Contains(may20))
	assert.False(t, both.Contains(Date{}), "unset date never matches")

	startOnly := LocationConfig{Start: may10}
	assert.True(t, startOnly.Contains(may20))
	assert.False(t, startOnly.Contains(may1))

	endOnly := LocationConfig{End: may10}
	assert.True(t, endOnly.Contains(may1))
	assert.False(t, endOnly.Contains(may20))

	none := LocationConfig{}
	assert.False(t, none.HasWindow())
	assert.False(t, none.Contains(may1))
}

func TestParseTransportMode(t *testing.T) {
	mode, ok := ParseTransportMode(" KOLI ")
	assert.True(t, ok)
	assert.Equal(t, TransportPackage, mode)

	mode, ok = ParseTransportMode("kilo")
	assert.True(t, ok)
	assert.Equal(t, TransportWeight, mode)

	mode, ok = ParseTransportMode("")
	assert.True(t, ok)
	assert.Equal(t, TransportUnset, mode)

	mode, ok = ParseTransportMode("truck")
	assert.False(t, ok)
	assert.Equal(t, TransportUnset, mode)
}

func TestParsePriceTier(t *testing.T) {
	tier, err := ParsePriceTier("Luar ")
	require.NoError(t, err)
	assert.Equal(t, TierExternal, tier)

	tier, err = ParsePriceTier("lokal")
	require.NoError(t, err)
	assert.Equal(t, TierLocal, tier)

	tier, err = ParsePriceTier("")
	require.NoError(t, err)
	assert.Equal(t, TierUnset, tier)

	_, err = ParsePriceTier("somewhere")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "somewhere")
}

func TestTariffs_SumTreatsNullExcavationAsZero(t *testing.T) {
	tr := Tariffs{
		Sampling:     decimal.NewFromInt(10),
		Backfill:     decimal.NewFromInt(20),
		Compensation: decimal.NewFromInt(30),
		Transport:    decimal.NewFromInt(40),
		Relay:        decimal.NewFromInt(50),
	}
	assert.True(t, tr.Sum().Equal(decimal.NewFromInt(150)))

	tr.Excavation = decimal.NewNullDecimal(decimal.NewFromInt(5))
	assert.True(t, tr.Sum().Equal(decimal.NewFromInt(155)))
}

func TestErrorHelpers(t *testing.T) {
	assert.True(t, IsEmptyResult(ErrEmptyResult))
	assert.False(t, IsValidation(ErrEmptyResult))
	assert.True(t, IsSessionNotFound(ErrSessionNotFound))
}
