package wallet

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"staking_bot/internal/domain"
)

// KeyPair is a freshly generated deposit address with its private key.
// The private key must be encrypted before it is stored anywhere.
type KeyPair struct {
	Address    string
	PrivateKey string
}

// KeyProvider generates one key pair per coin at account creation.
type KeyProvider interface {
	Generate(coin domain.Coin) (KeyPair, error)
}

// randProvider derives addresses from crypto/rand in each coin's
// address format. Real chain derivation plugs in behind the same
// interface.
type randProvider struct{}

func NewRandProvider() KeyProvider {
	return randProvider{}
}

const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

func (randProvider) Generate(coin domain.Coin) (KeyPair, error) {
	priv := make([]byte, 32)
	if _, err := rand.Read(priv); err != nil {
		return KeyPair{}, err
	}

	var address string
	switch coin {
	case domain.CoinBTC:
		address = "bc1" + randBase58(36)
	case domain.CoinETH, domain.CoinLINK:
		address = "0x" + randHex(20)
	case domain.CoinSOL:
		address = randBase58(44)
	case domain.CoinSUI:
		address = "0x" + randHex(32)
	default:
		return KeyPair{}, fmt.Errorf("wallet: unsupported coin %q", coin)
	}

	return KeyPair{Address: address, PrivateKey: hex.EncodeToString(priv)}, nil
}

func randHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func randBase58(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	out := make([]byte, n)
	for i, c := range b {
		out[i] = base58Alphabet[int(c)%len(base58Alphabet)]
	}
	return string(out)
}
