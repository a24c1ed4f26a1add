// Package tariff loads the rates wages are calculated with.
//
// A tariff comes from a YAML file, a URL serving the same YAML, or the
// built-in default:
//
//	regular_rate: "3.75"
//	evening:
//	  extra_rate: "1.15"
//	  start: "16:00"
//	  end: "8:00"
//	overtime:
//	  - {from: "8", to: "10", multiplier: "0.25"}
//	  - {from: "10", to: "12", multiplier: "0.5"}
//	  - {from: "12", multiplier: "1"}
//
// A tier without "to" has no upper bound.
package tariff

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/bryan-cox/wageledger/internal/model"
)

// File is the YAML form of a tariff. Amounts are decimal strings so they
// never pass through a float.
type File struct {
	RegularRate string      `yaml:"regular_rate" json:"regular_rate" validate:"required,amount"`
	Evening     EveningFile `yaml:"evening" json:"evening"`
	Overtime    []TierFile  `yaml:"overtime" json:"overtime" validate:"dive"`
}

// EveningFile is the YAML form of the evening premium.
type EveningFile struct {
	ExtraRate string `yaml:"extra_rate" json:"extra_rate" validate:"required,amount"`
	Start     string `yaml:"start" json:"start" validate:"required,clock"`
	End       string `yaml:"end" json:"end" validate:"required,clock"`
}

// TierFile is the YAML form of one overtime tier.
type TierFile struct {
	From       string `yaml:"from" json:"from" validate:"required,amount"`
	To         string `yaml:"to,omitempty" json:"to,omitempty" validate:"omitempty,amount"`
	Multiplier string `yaml:"multiplier" json:"multiplier" validate:"required,amount"`
}

// Default returns the tariff used when none is configured.
func Default() model.Tariff {
	return model.Tariff{
		RegularRate: decimal.RequireFromString("3.75"),
		Evening: model.EveningPremium{
			ExtraRate: decimal.RequireFromString("1.15"),
			Start:     model.Clock{Hours: 16},
			End:       model.Clock{Hours: 8},
		},
		Overtime: []model.OvertimeTier{
			{
				FromHours:  decimal.NewFromInt(8),
				ToHours:    decimal.NewNullDecimal(decimal.NewFromInt(10)),
				Multiplier: decimal.RequireFromString("0.25"),
			},
			{
				FromHours:  decimal.NewFromInt(10),
				ToHours:    decimal.NewNullDecimal(decimal.NewFromInt(12)),
				Multiplier: decimal.RequireFromString("0.5"),
			},
			{
				FromHours:  decimal.NewFromInt(12),
				Multiplier: decimal.NewFromInt(1),
			},
		},
	}
}

// Parse decodes and validates a YAML tariff. Unknown keys are rejected.
func Parse(data []byte) (model.Tariff, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return model.Tariff{}, errors.New("tariff is empty")
		}
		return model.Tariff{}, fmt.Errorf("could not parse tariff YAML: %w", err)
	}
	return f.Tariff()
}

// Load reads the tariff file at path.
func Load(path string) (model.Tariff, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Tariff{}, fmt.Errorf("could not read file '%s': %w", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return model.Tariff{}, fmt.Errorf("'%s': %w", path, err)
	}
	return t, nil
}

// Resolve picks the tariff source: url when set, then path, then Default.
// The second return value names the source for logging.
func Resolve(ctx context.Context, path, url, token string) (model.Tariff, string, error) {
	switch {
	case url != "":
		t, err := Fetch(ctx, url, token)
		return t, url, err
	case path != "":
		t, err := Load(path)
		return t, path, err
	default:
		return Default(), "default", nil
	}
}

// Tariff validates f and converts it to the model form.
func (f File) Tariff() (model.Tariff, error) {
	if err := validate.Struct(f); err != nil {
		return model.Tariff{}, describe(err)
	}

	t := model.Tariff{
		RegularRate: decimal.RequireFromString(f.RegularRate),
		Evening: model.EveningPremium{
			ExtraRate: decimal.RequireFromString(f.Evening.ExtraRate),
			Start:     model.MustParseClock(f.Evening.Start),
			End:       model.MustParseClock(f.Evening.End),
		},
	}
	for i, tf := range f.Overtime {
		tier := model.OvertimeTier{
			FromHours:  decimal.RequireFromString(tf.From),
			Multiplier: decimal.RequireFromString(tf.Multiplier),
		}
		if tf.To != "" {
			to := decimal.RequireFromString(tf.To)
			if !to.GreaterThan(tier.FromHours) {
				return model.Tariff{}, fmt.Errorf("invalid tariff: overtime[%d]: to (%s) must be greater than from (%s)", i, tf.To, tf.From)
			}
			tier.ToHours = decimal.NewNullDecimal(to)
		}
		t.Overtime = append(t.Overtime, tier)
	}
	return t, nil
}

// ToFile converts t to its YAML form.
func ToFile(t model.Tariff) File {
	f := File{
		RegularRate: t.RegularRate.String(),
		Evening: EveningFile{
			ExtraRate: t.Evening.ExtraRate.String(),
			Start:     t.Evening.Start.String(),
			End:       t.Evening.End.String(),
		},
	}
	for _, tier := range t.Overtime {
		tf := TierFile{From: tier.FromHours.String(), Multiplier: tier.Multiplier.String()}
		if tier.ToHours.Valid {
			tf.To = tier.ToHours.Decimal.String()
		}
		f.Overtime = append(f.Overtime, tf)
	}
	return f
}

// Marshal renders t as YAML that Parse accepts.
func Marshal(t model.Tariff) ([]byte, error) {
	return yaml.Marshal(ToFile(t))
}
