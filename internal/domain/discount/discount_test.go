package discount

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		discount Discount
		wantErr  string
	}{
		{name: "valid", discount: Discount{Code: "SAVE10", Percent: 10}},
		{name: "one percent", discount: Discount{Code: "TINY", Percent: 1}},
		{name: "hundred percent", discount: Discount{Code: "FREE", Percent: 100}},
		{name: "blank code", discount: Discount{Code: "   ", Percent: 10}, wantErr: "discount code is required"},
		{name: "zero percent", discount: Discount{Code: "ZERO", Percent: 0}, wantErr: "between 1 and 100"},
		{name: "over hundred", discount: Discount{Code: "BIG", Percent: 101}, wantErr: "between 1 and 100"},
		{name: "negative", discount: Discount{Code: "NEG", Percent: -5}, wantErr: "between 1 and 100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.discount.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_PercentErrorType(t *testing.T) {
	err := Discount{Code: "ZERO", Percent: 0}.Validate()

	var pErr *InvalidPercentError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, 0, pErr.Percent)
}
