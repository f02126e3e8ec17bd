package ethereum

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// carbonNFTABI is the slice of the CarbonQuest ERC-721 contract the
// service actually calls: the custom mint entry point and the standard
// Transfer event the token id is recovered from.
const carbonNFTABI = `[
	{
		"name": "mintNFT",
		"type": "function",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "recipient", "type": "address"},
			{"name": "tokenURI", "type": "string"}
		],
		"outputs": [{"name": "", "type": "uint256"}]
	},
	{
		"name": "Transfer",
		"type": "event",
		"anonymous": false,
		"inputs": [
			{"name": "from", "type": "address", "indexed": true},
			{"name": "to", "type": "address", "indexed": true},
			{"name": "tokenId", "type": "uint256", "indexed": true}
		]
	}
]`

// CarbonNFT wraps a deployed CarbonQuest ERC-721 contract.
type CarbonNFT struct {
	address  common.Address
	abi      abi.ABI
	contract *bind.BoundContract
}

// NewCarbonNFT binds the contract at the given address.
func NewCarbonNFT(address common.Address, backend bind.ContractBackend) (*CarbonNFT, error) {
	parsed, err := abi.JSON(strings.NewReader(carbonNFTABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract ABI: %w", err)
	}
	return &CarbonNFT{
		address:  address,
		abi:      parsed,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
	}, nil
}

// Address returns the bound contract address.
func (c *CarbonNFT) Address() common.Address {
	return c.address
}

// TransferTopic returns the event signature hash of the Transfer event.
func (c *CarbonNFT) TransferTopic() common.Hash {
	return c.abi.Events["Transfer"].ID
}
