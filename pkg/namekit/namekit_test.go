package namekit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Name
	}{
		{
			name:  "plain first last",
			input: "Jane Doe",
			want:  Name{First: "Jane", Last: "Doe", Full: "Jane Doe"},
		},
		{
			name:  "title and credential stripped",
			input: "Dr. Jane Doe, MD",
			want:  Name{First: "Jane", Last: "Doe", Full: "Jane Doe"},
		},
		{
			name:  "stacked credentials",
			input: "Doctor John A. Smith MD PhD FAANS",
			want:  Name{First: "John", Last: "Smith", Full: "John A. Smith"},
		},
		{
			name:  "middle name kept in full",
			input: "Mary Beth Carter",
			want:  Name{First: "Mary", Last: "Carter", Full: "Mary Beth Carter"},
		},
		{
			name:  "single token treated as surname",
			input: "Doe",
			want:  Name{Last: "Doe", Full: "Doe"},
		},
		{
			name:  "title only yields empty name",
			input: "Dr.",
			want:  Name{},
		},
		{
			name:  "whitespace only",
			input: "   ",
			want:  Name{},
		},
		{
			name:  "generational suffix",
			input: "Robert Doe Jr.",
			want:  Name{First: "Robert", Last: "Doe", Full: "Robert Doe"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.input))
		})
	}
}
