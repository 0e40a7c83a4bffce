package registrar

import (
	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/domain"
)

// Registrar answers whether a principal currently holds an identity. The
// answer may change between calls and must not be cached by callers.
type Registrar interface {
	Active(c ctx.Ctx, node domain.Node, principal domain.Address) (bool, error)
}
