package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComment(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"script block with padding", "  hi <script>alert(1)</script> there  ", "hi there"},
		{"script with attributes", `a<script type="text/javascript">x()</script>b`, "a b"},
		{"uppercase script", "x <SCRIPT>evil()</SCRIPT> y", "x y"},
		{"multiline script", "one <script>\nvar a = 1;\n</script> two", "one two"},
		{"other tags stripped", "<b>bold</b> text", "bold text"},
		{"plain text trimmed", "   hello world \n", "hello world"},
		{"entities kept readable", "fish & chips", "fish & chips"},
		{"only a script", "<script>alert(1)</script>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Comment(tt.in))
		})
	}
}

func TestMarkdown(t *testing.T) {
	out, err := Markdown("# Title\n\nSome *emphasis* <script>alert(1)</script>")
	require.NoError(t, err)

	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "<em>emphasis</em>")
	assert.NotContains(t, out, "<script>")
}
