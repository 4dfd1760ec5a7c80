package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceKey(t *testing.T) {
	assert.Equal(t, "/services/livestream-pipeline/node-1", ServiceKey("livestream-pipeline", "node-1"))
}
