package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedisKey(t *testing.T) {
	assert.Equal(t, "ledger:balance:0xabc", RedisKey(PfxLedger, "balance", "0xabc"))
	assert.Equal(t, "a/b", CustomKey("/", "a", "b"))
	assert.Equal(t, "", RedisKey())
}
