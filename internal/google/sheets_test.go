package google

import (
	"testing"
)

func TestCellString(t *testing.T) {
	row := []interface{}{"Trattoria", "4321", 77}

	tests := []struct {
		index int
		want  string
	}{
		{0, "Trattoria"},
		{1, "4321"},
		{2, ""}, // non-string cell
		{3, ""}, // past the row end
	}

	for _, tt := range tests {
		if got := cellString(row, tt.index); got != tt.want {
			t.Errorf("cellString(row, %d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}
