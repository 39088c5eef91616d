// Package codec serializes preference payloads exchanged between peers so
// that either side of a dyad can evaluate a trade.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"

	"dyad-exchange-lab/internal/domain"
)

// Codec errors.
var (
	// ErrEncode is returned when a payload cannot be serialized.
	ErrEncode = errors.New("codec: encode failed")

	// ErrDecode is returned when bytes do not hold a valid payload.
	ErrDecode = errors.New("codec: decode failed")
)

// Encode serializes v.
func Encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return data, nil
}

// Decode deserializes data into a T.
func Decode[T any](data []byte) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return v, nil
}

// PreferenceProfile is the preference state an agent shares with a peer.
type PreferenceProfile struct {
	BaseGood    int       `json:"base_good"`
	Beta        []float64 `json:"beta"`          // aggregated Cobb-Douglas weights
	AlphaToBase []float64 `json:"alpha_to_base"` // pairwise parameters against BaseGood
}

// ProfileOf copies the preference state of a.
func ProfileOf(a *domain.Agent, baseGood int) PreferenceProfile {
	p := PreferenceProfile{
		BaseGood:    baseGood,
		Beta:        make([]float64, len(a.Beta)),
		AlphaToBase: make([]float64, len(a.AlphaToBase)),
	}
	copy(p.Beta, a.Beta)
	copy(p.AlphaToBase, a.AlphaToBase)
	return p
}

// Validate checks that the profile is internally consistent.
func (p PreferenceProfile) Validate() error {
	if len(p.Beta) == 0 || len(p.Beta) != len(p.AlphaToBase) {
		return fmt.Errorf("%w: beta has %d goods, alpha_to_base has %d", ErrDecode, len(p.Beta), len(p.AlphaToBase))
	}
	if p.BaseGood < 0 || p.BaseGood >= len(p.Beta) {
		return fmt.Errorf("%w: base_good %d out of range", ErrDecode, p.BaseGood)
	}
	return nil
}

// EncodeProfile serializes the preference state of a.
func EncodeProfile(a *domain.Agent, baseGood int) ([]byte, error) {
	return Encode(ProfileOf(a, baseGood))
}

// DecodeProfile deserializes and validates a profile.
func DecodeProfile(data []byte) (PreferenceProfile, error) {
	p, err := Decode[PreferenceProfile](data)
	if err != nil {
		return PreferenceProfile{}, err
	}
	if err := p.Validate(); err != nil {
		return PreferenceProfile{}, err
	}
	return p, nil
}
