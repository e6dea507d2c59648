package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Need O+ donors", "Need O+ donors"},
		{"script removed", `<script>alert(1)</script>Come today`, "Come today"},
		{"tags stripped", "<b>urgent</b> need", "urgent need"},
		{"trimmed", "   hello  ", "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.in))
		})
	}
}
