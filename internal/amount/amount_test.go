package amount

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    int64
		wantErr bool
	}{
		{name: "int", in: 100, want: 100},
		{name: "int64", in: int64(7), want: 7},
		{name: "float floored", in: 12.9, want: 12},
		{name: "string", in: "250", want: 250},
		{name: "string with spaces", in: "  42 ", want: 42},
		{name: "string fraction floored", in: "3.99", want: 3},
		{name: "exponent", in: "1e3", want: 1000},
		{name: "json number", in: json.Number("15"), want: 15},
		{name: "zero", in: 0, wantErr: true},
		{name: "negative", in: -5, wantErr: true},
		{name: "negative string", in: "-1", wantErr: true},
		{name: "floors to zero", in: 0.5, wantErr: true},
		{name: "floors to zero string", in: "0.99", wantErr: true},
		{name: "NaN", in: math.NaN(), wantErr: true},
		{name: "Inf", in: math.Inf(1), wantErr: true},
		{name: "NaN string", in: "NaN", wantErr: true},
		{name: "Infinity string", in: "Infinity", wantErr: true},
		{name: "garbage", in: "abc", wantErr: true},
		{name: "empty", in: "", wantErr: true},
		{name: "overflow", in: "1e30", wantErr: true},
		{name: "unsupported type", in: true, wantErr: true},
		{name: "nil", in: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
