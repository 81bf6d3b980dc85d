package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseWindowDays(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"", DefaultWindowDays, false},
		{"1", 1, false},
		{"3", 3, false},
		{"30", 30, false},
		{"365", 365, false},
		{"0", 0, true},
		{"-7", 0, true},
		{"366", 0, true},
		{"week", 0, true},
		{"7.5", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseWindowDays(tt.raw)
		if tt.wantErr {
			assert.Error(t, err, "raw=%q", tt.raw)
		} else {
			assert.NoError(t, err, "raw=%q", tt.raw)
			assert.Equal(t, tt.want, got, "raw=%q", tt.raw)
		}
	}
}
