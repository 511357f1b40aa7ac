// Package ledger implements the Holochain conductor client used to read
// the current global definition and submit conversion tables.
package ledger

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/crypto/blake2b"
)

// Holo hash type prefixes. A full hash is 39 bytes: 3 prefix bytes, a
// 32-byte core, and a 4-byte DHT location.
var (
	actionHashPrefix = []byte{0x84, 0x29, 0x24}
	agentKeyPrefix   = []byte{0x84, 0x20, 0x24}
	dnaHashPrefix    = []byte{0x84, 0x2d, 0x24}
)

const (
	hashPrefixLen = 3
	hashCoreLen   = 32
	hashLocLen    = 4
	hashFullLen   = hashPrefixLen + hashCoreLen + hashLocLen
)

// ActionHash identifies a record on the ledger.
type ActionHash []byte

// AgentPubKey identifies an agent on the ledger.
type AgentPubKey []byte

// DnaHash identifies a DNA on the ledger.
type DnaHash []byte

// CellID addresses one cell: the DNA it runs and the agent running it.
// It travels as a two-element tuple on the wire.
type CellID struct {
	Dna   DnaHash
	Agent AgentPubKey
}

var (
	_ msgpack.CustomEncoder = (*CellID)(nil)
	_ msgpack.CustomDecoder = (*CellID)(nil)
)

// EncodeMsgpack implements msgpack.CustomEncoder.
func (c *CellID) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(2); err != nil {
		return err
	}
	if err := enc.EncodeBytes(c.Dna); err != nil {
		return err
	}
	return enc.EncodeBytes(c.Agent)
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (c *CellID) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	if n != 2 {
		return fmt.Errorf("%w: cell id tuple has %d elements", ErrInvalidHash, n)
	}
	dna, err := dec.DecodeBytes()
	if err != nil {
		return err
	}
	agent, err := dec.DecodeBytes()
	if err != nil {
		return err
	}
	c.Dna = DnaHash(dna)
	c.Agent = AgentPubKey(agent)
	return nil
}

// ZeroActionHash returns the all-zero sentinel hash published when no
// global definition lookup was performed.
func ZeroActionHash() ActionHash {
	h := make([]byte, hashFullLen)
	copy(h, actionHashPrefix)
	return h
}

// ActionHashFromBytes validates a raw 39-byte action hash.
func ActionHashFromBytes(raw []byte) (ActionHash, error) {
	if len(raw) != hashFullLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidHash, len(raw))
	}
	if !bytes.HasPrefix(raw, actionHashPrefix) {
		return nil, fmt.Errorf("%w: wrong type prefix", ErrInvalidHash)
	}
	return ActionHash(raw), nil
}

// ActionHashFromB64 parses the canonical "u"-prefixed base64url form.
func ActionHashFromB64(s string) (ActionHash, error) {
	if len(s) == 0 || s[0] != 'u' {
		return nil, fmt.Errorf("%w: missing u prefix", ErrInvalidHash)
	}
	raw, err := base64.RawURLEncoding.DecodeString(s[1:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	return ActionHashFromBytes(raw)
}

// NewAgentPubKey builds the full agent hash for a raw 32-byte ed25519
// public key.
func NewAgentPubKey(pub []byte) (AgentPubKey, error) {
	if len(pub) != hashCoreLen {
		return nil, fmt.Errorf("%w: public key is %d bytes", ErrInvalidHash, len(pub))
	}
	h := make([]byte, 0, hashFullLen)
	h = append(h, agentKeyPrefix...)
	h = append(h, pub...)
	loc := dhtLocation(pub)
	h = append(h, loc[:]...)
	return h, nil
}

// String returns the canonical "u"-prefixed base64url form.
func (h ActionHash) String() string { return hashToB64(h) }

// String returns the canonical "u"-prefixed base64url form.
func (h AgentPubKey) String() string { return hashToB64(h) }

// String returns the canonical "u"-prefixed base64url form.
func (h DnaHash) String() string { return hashToB64(h) }

// IsZero reports whether the hash is the all-zero sentinel.
func (h ActionHash) IsZero() bool {
	if len(h) != hashFullLen {
		return false
	}
	for _, b := range h[hashPrefixLen:] {
		if b != 0 {
			return false
		}
	}
	return true
}

// MarshalJSON renders the hash in its canonical base64url string form.
func (h ActionHash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

// UnmarshalJSON parses the canonical base64url string form.
func (h *ActionHash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ActionHashFromB64(s)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

func hashToB64(h []byte) string {
	return "u" + base64.RawURLEncoding.EncodeToString(h)
}

// dhtLocation derives the 4-byte DHT location: a blake2b-128 digest of the
// core folded into 4 bytes by XOR.
func dhtLocation(core []byte) [hashLocLen]byte {
	var loc [hashLocLen]byte
	digest, err := blake2b.New(16, nil)
	if err != nil {
		return loc
	}
	_, _ = digest.Write(core)
	sum := digest.Sum(nil)
	copy(loc[:], sum[:hashLocLen])
	for i := hashLocLen; i < len(sum); i++ {
		loc[i%hashLocLen] ^= sum[i]
	}
	return loc
}
