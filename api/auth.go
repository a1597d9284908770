// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"crypto/ecdsa"
	stdjson "encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/luxfi/database"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/common/hexutil"
	"github.com/luxfi/crypto"

	"github.com/cryptoalgebra/algebra-modular-hub/utils/json"
)

var (
	ErrMissingAuth      = errors.New("missing request authentication")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidNonce     = errors.New("invalid nonce")
)

// Auth proves that a mutating request was issued by the holder of the
// signing key. The signer becomes the caller of the hub operation.
type Auth struct {
	Nonce     json.Uint64   `json:"nonce"`
	Signature hexutil.Bytes `json:"signature"`
}

// RequestHash returns the digest a client signs to authenticate a call of
// method on the hub bound to pool. args must not carry an Auth.
//
// The digest is the EIP-191 personal message hash of
//
//	hub.<method>
//	pool: <pool>
//	nonce: <nonce>
//	<JSON of args>
func RequestHash(method string, pool common.Address, nonce uint64, args any) ([]byte, error) {
	payload, err := stdjson.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	msg := fmt.Sprintf("%s.%s\npool: %s\nnonce: %d\n%s", serviceName, method, pool.Hex(), nonce, payload)
	return crypto.Keccak256([]byte(fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(msg), msg))), nil
}

// SignRequest authenticates a call of method with key.
func SignRequest(key *ecdsa.PrivateKey, method string, pool common.Address, nonce uint64, args any) (*Auth, error) {
	hash, err := RequestHash(method, pool, nonce, args)
	if err != nil {
		return nil, err
	}
	sig, err := crypto.Sign(hash, key)
	if err != nil {
		return nil, err
	}
	return &Auth{
		Nonce:     json.Uint64(nonce),
		Signature: sig,
	}, nil
}

// nonces tracks the next nonce expected from every signer. A nonce is
// consumed as soon as the signature over it is verified.
type nonces struct {
	lock sync.Mutex
	db   database.Database
}

func (n *nonces) get(addr common.Address) (uint64, error) {
	n.lock.Lock()
	defer n.lock.Unlock()

	return n.next(addr)
}

func (n *nonces) next(addr common.Address) (uint64, error) {
	nonce, err := database.GetUInt64(n.db, addr[:])
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	return nonce, err
}

// consume verifies that auth signs args and carries the signer's next nonce,
// then returns the signer.
func (n *nonces) consume(method string, pool common.Address, auth *Auth, args any) (common.Address, error) {
	if auth == nil || len(auth.Signature) == 0 {
		return common.Address{}, ErrMissingAuth
	}
	if len(auth.Signature) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSignature, crypto.SignatureLength, len(auth.Signature))
	}

	hash, err := RequestHash(method, pool, uint64(auth.Nonce), args)
	if err != nil {
		return common.Address{}, err
	}

	sig := common.CopyBytes(auth.Signature)
	// Wallets produce a recovery id of 27 or 28.
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}
	pub, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	signer := common.PubkeyToAddress(*pub)

	n.lock.Lock()
	defer n.lock.Unlock()

	expected, err := n.next(signer)
	if err != nil {
		return common.Address{}, err
	}
	if uint64(auth.Nonce) != expected {
		return common.Address{}, fmt.Errorf("%w: expected %d, got %d", ErrInvalidNonce, expected, auth.Nonce)
	}
	if err := database.PutUInt64(n.db, signer[:], expected+1); err != nil {
		return common.Address{}, err
	}
	return signer, nil
}
