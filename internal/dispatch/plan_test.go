package dispatch

import (
	"reflect"
	"testing"
)

func TestBatchPlan(t *testing.T) {
	tests := []struct {
		name  string
		total int
		limit int
		want  []int
	}{
		{"budget splits with remainder", 10, 3, []int{3, 3, 3, 1}},
		{"exact multiple", 9, 3, []int{3, 3, 3}},
		{"budget below limit", 2, 5, []int{2}},
		{"limit one", 3, 1, []int{1, 1, 1}},
		{"zero budget", 0, 4, nil},
		{"negative budget", -1, 4, nil},
		{"non-positive limit falls back to one", 3, 0, []int{1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := batchPlan(tt.total, tt.limit)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("batchPlan(%d, %d) = %v, want %v", tt.total, tt.limit, got, tt.want)
			}
		})
	}
}
