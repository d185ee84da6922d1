package caldav

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsConfigured(t *testing.T) {
	assert.False(t, NewClient("", "", "").IsConfigured())
	assert.False(t, NewClient("https://dav.example.com", "user", "").IsConfigured())
	assert.True(t, NewClient("https://dav.example.com", "user", "pass").IsConfigured())
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "my-work-calendar", sanitizeName("My Work Calendar"))
}
