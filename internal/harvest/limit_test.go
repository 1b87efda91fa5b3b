package harvest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBatchLimit(t *testing.T) {
	testCases := []struct {
		in      string
		want    BatchLimit
		wantErr bool
	}{
		{in: "all", want: AllBatches()},
		{in: "ALL", want: AllBatches()},
		{in: "0", want: AllBatches()},
		{in: "3", want: Batches(3)},
		{in: "", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "some", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseBatchLimit(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBatchLimitPlan(t *testing.T) {
	assert.Equal(t, 3, AllBatches().Plan(3))
	assert.Equal(t, 1, Batches(1).Plan(3))
	assert.Equal(t, 3, Batches(10).Plan(3))
	assert.Equal(t, 0, Batches(1).Plan(0))
	assert.Equal(t, "all", AllBatches().String())
	assert.Equal(t, "2", Batches(2).String())
}
