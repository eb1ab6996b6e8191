package serial

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPutcharBuffersUntilNewline(t *testing.T) {
	s := NewTTYSink(nil)
	s.Putchar('h')
	s.Putchar('i')
	assert.Equal(t, []byte("hi"), s.Pending())

	s.Putchar('\n')
	assert.Empty(t, s.Pending())
}

func TestPutcharDropsCarriageReturn(t *testing.T) {
	s := NewTTYSink(nil)
	s.Putchar('h')
	s.Putchar('\r')
	s.Putchar('i')
	assert.Equal(t, []byte("hi"), s.Pending())
}
