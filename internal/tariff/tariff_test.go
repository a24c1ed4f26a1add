package tariff

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryan-cox/wageledger/internal/model"
)

const defaultYAML = `
regular_rate: "3.75"
evening:
  extra_rate: "1.15"
  start: "16:00"
  end: "8:00"
overtime:
  - {from: "8", to: "10", multiplier: "0.25"}
  - {from: "10", to: "12", multiplier: "0.5"}
  - {from: "12", multiplier: "1"}
`

func assertSameTariff(t *testing.T, want, got model.Tariff) {
	t.Helper()
	assert.True(t, want.RegularRate.Equal(got.RegularRate), "regular rate %s != %s", want.RegularRate, got.RegularRate)
	assert.True(t, want.Evening.ExtraRate.Equal(got.Evening.ExtraRate), "extra rate %s != %s", want.Evening.ExtraRate, got.Evening.ExtraRate)
	assert.Equal(t, want.Evening.Start, got.Evening.Start)
	assert.Equal(t, want.Evening.End, got.Evening.End)
	require.Len(t, got.Overtime, len(want.Overtime))
	for i := range want.Overtime {
		assert.True(t, want.Overtime[i].FromHours.Equal(got.Overtime[i].FromHours), "tier %d from", i)
		assert.True(t, want.Overtime[i].Multiplier.Equal(got.Overtime[i].Multiplier), "tier %d multiplier", i)
		assert.Equal(t, want.Overtime[i].ToHours.Valid, got.Overtime[i].ToHours.Valid, "tier %d bounded", i)
		if want.Overtime[i].ToHours.Valid {
			assert.True(t, want.Overtime[i].ToHours.Decimal.Equal(got.Overtime[i].ToHours.Decimal), "tier %d to", i)
		}
	}
}

func TestParseDefaultYAML(t *testing.T) {
	got, err := Parse([]byte(defaultYAML))
	require.NoError(t, err)
	assertSameTariff(t, Default(), got)
}

func TestParseUnquotedNumbers(t *testing.T) {
	got, err := Parse([]byte("regular_rate: 1.00\nevening: {extra_rate: 0.75, start: \"16:00\", end: \"23:00\"}\n"))
	require.NoError(t, err)
	assert.Equal(t, "1", got.RegularRate.String())
	assert.Equal(t, "0.75", got.Evening.ExtraRate.String())
	assert.Empty(t, got.Overtime)
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Marshal(Default())
	require.NoError(t, err)

	got, err := Parse(data)
	require.NoError(t, err)
	assertSameTariff(t, Default(), got)
}

func TestParseRejectsInvalidTariffs(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		message string
	}{
		{
			name:    "missing rate",
			yaml:    `evening: {extra_rate: "1", start: "16:00", end: "8:00"}`,
			message: "regular_rate is required",
		},
		{
			name:    "bad clock",
			yaml:    `{regular_rate: "1", evening: {extra_rate: "1", start: "25:00", end: "8:00"}}`,
			message: "evening.start '25:00' is not a time of day (H:MM)",
		},
		{
			name:    "negative multiplier",
			yaml:    `{regular_rate: "1", evening: {extra_rate: "1", start: "16:00", end: "8:00"}, overtime: [{from: "8", multiplier: "-1"}]}`,
			message: "overtime[0].multiplier '-1' is not a non-negative decimal",
		},
		{
			name:    "not a number",
			yaml:    `{regular_rate: "lots", evening: {extra_rate: "1", start: "16:00", end: "8:00"}}`,
			message: "regular_rate 'lots' is not a non-negative decimal",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)

			var verrs validator.ValidationErrors
			assert.ErrorAs(t, err, &verrs)
		})
	}
}

func TestParseRejectsEmptyTier(t *testing.T) {
	_, err := Parse([]byte(`{regular_rate: "1", evening: {extra_rate: "1", start: "16:00", end: "8:00"}, overtime: [{from: "10", to: "8", multiplier: "1"}]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overtime[0]: to (8) must be greater than from (10)")
}

func TestParseRejectsUnknownKeysAndEmptyInput(t *testing.T) {
	_, err := Parse([]byte("regular_rate: \"1\"\nregular_wage: \"2\"\n"))
	assert.Error(t, err)

	_, err = Parse(nil)
	assert.EqualError(t, err, "tariff is empty")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tariff.yml")
	require.NoError(t, os.WriteFile(path, []byte(defaultYAML), 0o600))

	got, err := Load(path)
	require.NoError(t, err)
	assertSameTariff(t, Default(), got)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFetch(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/tariff.yml" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write([]byte(defaultYAML))
	}))
	defer srv.Close()

	got, err := Fetch(context.Background(), srv.URL+"/tariff.yml", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "Bearer s3cret", gotAuth)
	assertSameTariff(t, Default(), got)

	_, err = Fetch(context.Background(), srv.URL+"/missing.yml", "")
	assert.EqualError(t, err, "tariff server returned status 404")
	assert.Empty(t, gotAuth)
}

func TestResolve(t *testing.T) {
	got, source, err := Resolve(context.Background(), "", "", "")
	require.NoError(t, err)
	assert.Equal(t, "default", source)
	assertSameTariff(t, Default(), got)

	path := filepath.Join(t.TempDir(), "tariff.yml")
	require.NoError(t, os.WriteFile(path, []byte(`{regular_rate: "2", evening: {extra_rate: "1", start: "18:00", end: "6:00"}}`), 0o600))

	got, source, err = Resolve(context.Background(), path, "", "")
	require.NoError(t, err)
	assert.Equal(t, path, source)
	assert.Equal(t, "2", got.RegularRate.String())
}
