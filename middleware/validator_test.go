package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateVar(t *testing.T) {
	cases := []struct {
		name    string
		value   string
		tag     string
		wantErr bool
	}{
		{"valid habit kind", "quantitative", "oneof=binary quantitative", false},
		{"unknown habit kind", "weekly", "oneof=binary quantitative", true},
		{"valid schedule", "weekdays", "oneof=daily weekly weekdays", false},
		{"unknown schedule", "monthly", "oneof=daily weekly weekdays", true},
		{"valid priority", "high", "oneof=low medium high", false},
		{"unknown priority", "urgent", "oneof=low medium high", true},
		{"valid color", "#3B82F6", "hexcolor", false},
		{"bad color", "blue", "hexcolor", true},
		{"valid reminder", "07:30", "datetime=15:04", false},
		{"bad reminder", "25:99", "datetime=15:04", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateVar(tc.value, tc.tag)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
