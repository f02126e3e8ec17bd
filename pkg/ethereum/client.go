// Package ethereum implements the chain collaborator: it verifies the
// configured network and mints CarbonQuest NFTs for approved submissions.
package ethereum

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"time"

	"github.com/creasty/defaults"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/carbonquest/carbonquest/pkg/config"
)

// options holds tunables with defaults applied via struct tags.
type options struct {
	ChainID     int64         `default:"11155111"`
	GasLimit    uint64        `default:"300000"`
	MintTimeout time.Duration `default:"120000000000"` // 2m
}

// Client represents an Ethereum client bound to the CarbonQuest NFT contract.
type Client struct {
	opts        options
	client      *ethclient.Client
	privateKey  *ecdsa.PrivateKey
	address     common.Address
	maxGasPrice *big.Int
	nft         *CarbonNFT
	logger      *zap.Logger
}

// NewClient dials the configured RPC endpoint, verifies the chain id and
// binds the NFT contract. Returns ErrWrongNetwork when the endpoint serves
// a different chain than configured.
func NewClient(ctx context.Context, cfg *config.EthereumConfig, logger *zap.Logger) (*Client, error) {
	opts := options{
		ChainID:     cfg.ChainID,
		GasLimit:    cfg.GasLimit,
		MintTimeout: cfg.MintTimeout,
	}
	if err := defaults.Set(&opts); err != nil {
		return nil, fmt.Errorf("failed to apply client defaults: %w", err)
	}

	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Ethereum RPC: %w", err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to query chain id: %w", err)
	}
	if chainID.Int64() != opts.ChainID {
		client.Close()
		return nil, fmt.Errorf("%w: got chain %d, want %d", ErrWrongNetwork, chainID.Int64(), opts.ChainID)
	}

	privateKey, err := crypto.HexToECDSA(cfg.MinterPrivateKey)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to load minter key: %w", err)
	}
	address := crypto.PubkeyToAddress(privateKey.PublicKey)

	nft, err := NewCarbonNFT(common.HexToAddress(cfg.ContractAddress), client)
	if err != nil {
		client.Close()
		return nil, err
	}

	var maxGasPrice *big.Int
	if cfg.MaxGasPrice != "" {
		maxGasPrice = new(big.Int)
		if _, ok := maxGasPrice.SetString(cfg.MaxGasPrice, 10); !ok {
			client.Close()
			return nil, fmt.Errorf("invalid max gas price: %q", cfg.MaxGasPrice)
		}
	}

	logger.Info("Connected to Ethereum",
		zap.Int64("chain_id", opts.ChainID),
		zap.String("rpc_url", cfg.RPCURL),
		zap.String("nft_contract", nft.Address().Hex()),
		zap.String("minter_address", address.Hex()))

	return &Client{
		opts:        opts,
		client:      client,
		privateKey:  privateKey,
		address:     address,
		maxGasPrice: maxGasPrice,
		nft:         nft,
		logger:      logger,
	}, nil
}

// Close closes the underlying RPC connection.
func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// transactor returns a keyed transaction signer with a fresh nonce.
func (c *Client) transactor(ctx context.Context) (*bind.TransactOpts, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(c.privateKey, big.NewInt(c.opts.ChainID))
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}

	nonce, err := c.client.PendingNonceAt(ctx, c.address)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}
	auth.Nonce = big.NewInt(int64(nonce))
	auth.GasLimit = c.opts.GasLimit
	auth.Context = ctx

	if c.maxGasPrice != nil {
		gasPrice, err := c.client.SuggestGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to suggest gas price: %w", err)
		}
		if gasPrice.Cmp(c.maxGasPrice) > 0 {
			c.logger.Warn("Suggested gas price exceeds maximum",
				zap.String("suggested", gasPrice.String()),
				zap.String("max", c.maxGasPrice.String()))
			gasPrice = c.maxGasPrice
		}
		auth.GasPrice = gasPrice
	}

	return auth, nil
}

// Mint mints an NFT for recipient with the given token URI, waits for the
// transaction to be mined and returns the token id recovered from the
// Transfer event.
func (c *Client) Mint(ctx context.Context, recipient, tokenURI string) (*MintResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.MintTimeout)
	defer cancel()

	auth, err := c.transactor(ctx)
	if err != nil {
		return nil, err
	}

	to := common.HexToAddress(recipient)
	tx, err := c.nft.contract.Transact(auth, "mintNFT", to, tokenURI)
	if err != nil {
		return nil, fmt.Errorf("failed to send mint transaction: %w", err)
	}

	c.logger.Info("Mint transaction sent",
		zap.String("tx_hash", tx.Hash().Hex()),
		zap.String("recipient", to.Hex()),
		zap.String("token_uri", tokenURI))

	receipt, err := bind.WaitMined(ctx, c.client, tx)
	if err != nil {
		return nil, fmt.Errorf("failed waiting for mint transaction: %w", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: tx %s", ErrMintReverted, tx.Hash().Hex())
	}

	tokenID, err := c.tokenIDFromReceipt(receipt)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Mint confirmed",
		zap.String("tx_hash", tx.Hash().Hex()),
		zap.String("token_id", tokenID.String()),
		zap.Uint64("block", receipt.BlockNumber.Uint64()))

	return &MintResult{
		TokenID: tokenID.String(),
		TxHash:  tx.Hash().Hex(),
	}, nil
}

// tokenIDFromReceipt extracts the minted token id from the Transfer event
// logged by the NFT contract. The token id is the third indexed topic.
func (c *Client) tokenIDFromReceipt(receipt *types.Receipt) (*big.Int, error) {
	transferTopic := c.nft.TransferTopic()
	for _, log := range receipt.Logs {
		if log.Address != c.nft.Address() {
			continue
		}
		if len(log.Topics) == 4 && log.Topics[0] == transferTopic {
			return new(big.Int).SetBytes(log.Topics[3].Bytes()), nil
		}
	}
	return nil, ErrNoTransferEvent
}
