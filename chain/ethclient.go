// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/params"

	"chainvote/models"
)

// Gas parameters per contract method, matching the deployed contract's
// measured costs with headroom.
const (
	voteGasLimit    = 300000
	createGasLimit  = 500000
	releaseGasLimit = 200000

	voteGasPriceGwei  = 20
	adminGasPriceGwei = 10
)

// Confirmation defaults; overridable through Options.
const (
	DefaultReceiptTimeout = 120 * time.Second
	DefaultPollInterval   = 500 * time.Millisecond
)

// DefaultChainID is Sepolia.
const DefaultChainID = 11155111

// Options configures an EthClient beyond the required endpoint,
// contract address, and signing key.
type Options struct {
	ChainID        int64
	ReceiptTimeout time.Duration
	PollInterval   time.Duration
}

// EthClient implements Client against a JSON-RPC Ethereum node using a
// single service signing account. All state-changing methods serialize
// nonce acquisition through one mutex: the signing account is a
// single-writer resource per process.
type EthClient struct {
	rpc      *ethclient.Client
	contract common.Address
	abi      abi.ABI
	key      *ecdsa.PrivateKey
	from     common.Address
	chainID  *big.Int

	receiptTimeout time.Duration
	pollInterval   time.Duration

	nonceMu sync.Mutex
}

// NewEthClient dials rpcURL and prepares the contract binding. The
// private key is the service account's hex-encoded secp256k1 key, with
// or without a 0x prefix.
func NewEthClient(rpcURL, contractAddr, privateKeyHex string, opts Options) (*EthClient, error) {
	rpc, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial ethereum node: %w", err)
	}

	if !common.IsHexAddress(contractAddr) {
		return nil, fmt.Errorf("invalid contract address: %q", contractAddr)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse service private key: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(votingABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract ABI: %w", err)
	}

	chainID := int64(DefaultChainID)
	if opts.ChainID != 0 {
		chainID = opts.ChainID
	}
	receiptTimeout := DefaultReceiptTimeout
	if opts.ReceiptTimeout != 0 {
		receiptTimeout = opts.ReceiptTimeout
	}
	pollInterval := DefaultPollInterval
	if opts.PollInterval != 0 {
		pollInterval = opts.PollInterval
	}

	return &EthClient{
		rpc:            rpc,
		contract:       common.HexToAddress(contractAddr),
		abi:            parsed,
		key:            key,
		from:           crypto.PubkeyToAddress(key.PublicKey),
		chainID:        big.NewInt(chainID),
		receiptTimeout: receiptTimeout,
		pollInterval:   pollInterval,
	}, nil
}

// From returns the service account address.
func (c *EthClient) From() string {
	return c.from.Hex()
}

// Close releases the underlying RPC connection.
func (c *EthClient) Close() {
	c.rpc.Close()
}

func gwei(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(params.GWei))
}

// submit packs, signs, and sends one contract transaction. Holding
// nonceMu across acquire-nonce -> sign -> send prevents two concurrent
// submissions from reusing a nonce.
func (c *EthClient) submit(ctx context.Context, method string, gasLimit uint64, gasPrice *big.Int, args ...interface{}) (string, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return "", fmt.Errorf("failed to pack %s call: %w", method, err)
	}

	c.nonceMu.Lock()
	defer c.nonceMu.Unlock()

	nonce, err := c.rpc.PendingNonceAt(ctx, c.from)
	if err != nil {
		return "", fmt.Errorf("failed to fetch nonce: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &c.contract,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), c.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s transaction: %w", method, err)
	}

	if err := c.rpc.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("failed to send %s transaction: %w", method, err)
	}

	hash := signed.Hash().Hex()
	slog.Info("transaction submitted", "method", method, "tx_hash", hash, "nonce", nonce)
	return hash, nil
}

// call executes a read-only contract method and unpacks its outputs.
func (c *EthClient) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s call: %w", method, err)
	}

	out, err := c.rpc.CallContract(ctx, ethereum.CallMsg{To: &c.contract, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s call failed: %w", method, err)
	}

	vals, err := c.abi.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s result: %w", method, err)
	}
	return vals, nil
}

// IsSessionActive implements Client.
func (c *EthClient) IsSessionActive(ctx context.Context, sessionID int64) (bool, error) {
	vals, err := c.call(ctx, "isSessionActive", big.NewInt(sessionID))
	if err != nil {
		return false, err
	}
	active, ok := vals[0].(bool)
	if !ok {
		return false, fmt.Errorf("unexpected isSessionActive result type %T", vals[0])
	}
	return active, nil
}

// SubmitVote implements Client.
func (c *EthClient) SubmitVote(ctx context.Context, sessionID int64, option string) (string, error) {
	return c.submit(ctx, "vote", voteGasLimit, gwei(voteGasPriceGwei), big.NewInt(sessionID), option)
}

// CreateSession implements Client.
func (c *EthClient) CreateSession(ctx context.Context, name string, candidates []string, durationSeconds int64) (string, error) {
	return c.submit(ctx, "createVotingSession", createGasLimit, gwei(adminGasPriceGwei), name, candidates, big.NewInt(durationSeconds))
}

// ReleaseResults implements Client.
func (c *EthClient) ReleaseResults(ctx context.Context, sessionID int64) (string, error) {
	return c.submit(ctx, "releaseResults", releaseGasLimit, gwei(adminGasPriceGwei), big.NewInt(sessionID))
}

// LookupReceipt implements Client.
func (c *EthClient) LookupReceipt(ctx context.Context, txHash string) (*Receipt, error) {
	receipt, err := c.rpc.TransactionReceipt(ctx, common.HexToHash(txHash))
	if errors.Is(err, ethereum.NotFound) {
		return nil, ErrReceiptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch receipt: %w", err)
	}
	return &Receipt{
		TxHash:      txHash,
		Status:      receipt.Status,
		BlockNumber: receipt.BlockNumber.Uint64(),
	}, nil
}

// WaitForReceipt implements Client. The wait blocks the calling
// goroutine only; nothing else is held while polling.
func (c *EthClient) WaitForReceipt(ctx context.Context, txHash string) (*Receipt, error) {
	deadline := time.Now().Add(c.receiptTimeout)
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.LookupReceipt(ctx, txHash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ErrReceiptNotFound) {
			return nil, err
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: no receipt for %s after %s", models.ErrConfirmationTimeout, txHash, c.receiptTimeout)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// GetResults implements Client.
func (c *EthClient) GetResults(ctx context.Context, sessionID int64) ([]string, []uint64, error) {
	vals, err := c.call(ctx, "getResults", big.NewInt(sessionID))
	if err != nil {
		return nil, nil, err
	}
	if len(vals) != 2 {
		return nil, nil, fmt.Errorf("unexpected getResults arity %d", len(vals))
	}

	labels, ok := vals[0].([]string)
	if !ok {
		return nil, nil, fmt.Errorf("unexpected getResults labels type %T", vals[0])
	}
	rawCounts, ok := vals[1].([]*big.Int)
	if !ok {
		return nil, nil, fmt.Errorf("unexpected getResults counts type %T", vals[1])
	}
	if len(labels) != len(rawCounts) {
		return nil, nil, fmt.Errorf("getResults returned %d labels but %d counts", len(labels), len(rawCounts))
	}

	counts := make([]uint64, len(rawCounts))
	for i, n := range rawCounts {
		counts[i] = n.Uint64()
	}
	return labels, counts, nil
}
