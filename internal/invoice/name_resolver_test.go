package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveName(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		expected string
	}{
		{
			name:     "didi provider filename",
			filename: "滴滴电子发票123_456_张三.pdf",
			expected: "张三",
		},
		{
			name:     "didi provider filename with dashes",
			filename: "滴滴电子发票20240301-88-李四.pdf",
			expected: "李四",
		},
		{
			name:     "plain name filename",
			filename: "王小明.pdf",
			expected: "王小明",
		},
		{
			name:     "no ideographs falls back to unknown",
			filename: "invoice123.pdf",
			expected: "未知",
		},
		{
			name:     "fallback picks longest run",
			filename: "报销_欧阳文山2024.pdf",
			expected: "欧阳文山",
		},
		{
			name:     "generic pattern matches run right before extension",
			filename: "行程单123李四光.pdf",
			expected: "李四光",
		},
		{
			name:     "fallback tie-break keeps first occurrence",
			filename: "张三丰123李四光2024.pdf",
			expected: "张三丰",
		},
		{
			name:     "uppercase extension is not matched by patterns",
			filename: "李雷.PDF",
			expected: "李雷",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveName(tt.filename))
		})
	}
}
