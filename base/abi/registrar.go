package abi

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// RegistrarABI covers the identity registrar read used before listing
var RegistrarABI abi.ABI

func init() {
	_abi, err := abi.JSON(strings.NewReader(registrarABI))
	if err != nil {
		panic("Failed to parse ABI")
	}
	RegistrarABI = _abi
}

var registrarABI = `[{"type":"function","name":"active","constant":true,"stateMutability":"view","payable":false,"inputs":[{"type":"bytes32","name":"node"},{"type":"address","name":"principal"}],"outputs":[{"type":"bool"}]}]`
