package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCatalog(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		expected []Entry
		wantErr  error
	}{
		{
			name: "valid catalog",
			data: "item,cf_kg_per_kg\npork sausage,5.0\napple,0.43\n",
			expected: []Entry{
				{Name: "pork sausage", EmissionFactor: 5.0},
				{Name: "apple", EmissionFactor: 0.43},
			},
		},
		{
			name: "decimal comma and stray spaces",
			data: "item,cf_kg_per_kg\ncow milk,\"1,39\"\n",
			expected: []Entry{
				{Name: "cow milk", EmissionFactor: 1.39},
			},
		},
		{
			name: "bad rows dropped",
			data: "item,cf_kg_per_kg\n,3.0\nbeef,n/a\nbeef,-1\nlentils,0.9\n",
			expected: []Entry{
				{Name: "lentils", EmissionFactor: 0.9},
			},
		},
		{
			name:    "missing required columns",
			data:    "food,co2\nbeef,60\n",
			wantErr: ErrCatalogUnavailable,
		},
		{
			name:    "empty input",
			data:    "",
			wantErr: ErrCatalogUnavailable,
		},
		{
			name:     "columns matched case-insensitively",
			data:     "Item,CF_kg_per_kg\nrice,4.0\n",
			expected: []Entry{{Name: "rice", EmissionFactor: 4.0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := ParseCatalog([]byte(tt.data))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, entries)
		})
	}
}
