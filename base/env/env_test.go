package env

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOr(t *testing.T) {
	assert.Equal(t, "a", Or("", "a", "b"))
	assert.Equal(t, "", Or("", ""))
}

func TestFromEnvironment(t *testing.T) {
	os.Setenv("APP_NAME", "api")
	defer os.Unsetenv("APP_NAME")
	assert.Equal(t, "api", AppName())
	assert.Equal(t, "api", Or("", AppName()))
}
