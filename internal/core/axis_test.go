package core

import (
	"reflect"
	"testing"
)

func TestSortAxis(t *testing.T) {
	tests := []struct {
		name string
		mode ViewMode
		in   []string
		want []string
	}{
		{
			name: "month keys follow the calendar",
			mode: ModeMonth,
			in:   []string{"Oct 2025", "Jan 2025", "Jun 2025", "Feb 2025"},
			want: []string{"Jan 2025", "Feb 2025", "Jun 2025", "Oct 2025"},
		},
		{
			name: "year keys ascend numerically",
			mode: ModeYear,
			in:   []string{"2023", "2021", "2022"},
			want: []string{"2021", "2022", "2023"},
		},
		{
			name: "week keys order by the monday they denote",
			mode: ModeWeek,
			in: []string{
				"Jan 13 – Jan 19, 2025",
				"Dec 30 – Jan 5, 2024",
				"Jan 6 – Jan 12, 2025",
			},
			want: []string{
				"Dec 30 – Jan 5, 2024",
				"Jan 6 – Jan 12, 2025",
				"Jan 13 – Jan 19, 2025",
			},
		},
		{
			name: "empty input",
			mode: ModeMonth,
			in:   []string{},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SortAxis(tt.mode, tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SortAxis(%s, %v) = %v, want %v", tt.mode, tt.in, got, tt.want)
			}
		})
	}
}

func TestSortAxisDoesNotMutateInput(t *testing.T) {
	in := []string{"2023", "2021"}
	SortAxis(ModeYear, in)
	if in[0] != "2023" {
		t.Error("SortAxis mutated its input")
	}
}
