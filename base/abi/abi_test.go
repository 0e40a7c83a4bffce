package abi

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestRegistrarActive(t *testing.T) {
	req := require.New(t)
	node := common.HexToHash("0x4f5b812789fc606be1b3b16908db13fc7a9adf7ca72641f84d75b47069d3d7f0")
	data, err := RegistrarABI.Pack("active", node, common.HexToAddress("0x2000000000000000000000000000000000000001"))
	req.NoError(err)
	// 4 byte selector and two words
	req.Len(data, 4+32+32)

	out, err := RegistrarABI.Methods["active"].Outputs.Pack(true)
	req.NoError(err)
	unpacked, err := RegistrarABI.Unpack("active", out)
	req.NoError(err)
	req.Equal(true, unpacked[0])
}

func TestErc721SupportsInterface(t *testing.T) {
	req := require.New(t)
	data, err := ERC721TokenABI.Pack("supportsInterface", Erc721InterfaceId)
	req.NoError(err)
	req.Equal("01ffc9a7", common.Bytes2Hex(data[:4]))
	req.Equal("80ac58cd", common.Bytes2Hex(data[4:8]))
}
