package indexing

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgress_Reports(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, "Analyzing", 100, 10)

	p.Add(25)
	p.Add(25)
	p.Add(50)

	out := buf.String()
	assert.Contains(t, out, "Analyzing: 50/100 (50.0%)")
	assert.Contains(t, out, "100/100 (100.0%)")
}

func TestProgress_CapsAtTotal(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, "Embedding", 10, 1)

	p.Add(15)
	assert.Contains(t, buf.String(), "10/10")
	assert.NotContains(t, buf.String(), "15/10")
}

func TestProgress_Finish(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, "Analyzing", 100, 50)

	p.Add(10)
	assert.Empty(t, buf.String(), "below the reporting interval")

	p.Finish()
	out := buf.String()
	assert.Contains(t, out, "100/100")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestProgress_NilWriter(t *testing.T) {
	p := NewProgress(nil, "Analyzing", 10, 1)
	assert.Nil(t, p)

	p.Add(5)
	p.Finish()
	assert.Zero(t, p.Elapsed())
}
