// Package ledger implements the Holochain conductor client used to read
// the current global definition and publish conversion tables.
//
// The conductor exposes two websocket interfaces. The admin interface
// issues app authentication tokens; the app interface accepts those
// tokens and then serves app info and signed zome calls. This client
// performs exactly that handshake and keeps the app connection open for
// the lifetime of the run.
package ledger

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/crypto/blake2b"

	"github.com/unytco/pricing-oracle/pkg/metrics"
)

const (
	// DefaultTimeout bounds a single conductor round trip.
	DefaultTimeout = 30 * time.Second

	// tokenExpirySeconds is how long an issued app authentication token
	// stays valid before it is spent.
	tokenExpirySeconds = 60

	// callExpiry is how far in the future a signed zome call expires.
	callExpiry = 5 * time.Minute
)

// Config carries everything needed to reach a conductor and sign calls.
type Config struct {
	Host       string
	AdminPort  uint16
	AppPort    uint16
	AppID      string
	RoleName   string
	ZomeName   string
	Timeout    time.Duration
	SigningKey ed25519.PrivateKey
}

// Client is a connected, authenticated app interface session.
type Client struct {
	cfg    Config
	logger zerolog.Logger

	conn       *conn
	cell       CellID
	provenance AgentPubKey
}

// ParseSigningKey decodes base64 signing key material into an ed25519
// private key. Both the 64-byte private key and the 32-byte seed form
// are accepted, in standard or URL encoding, padded or not.
func ParseSigningKey(s string) (ed25519.PrivateKey, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty key material", ErrInvalidSigningKey)
	}

	var raw []byte
	var err error
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		raw, err = enc.DecodeString(s)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: not base64", ErrInvalidSigningKey)
	}

	switch len(raw) {
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(raw), nil
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(raw), nil
	default:
		return nil, fmt.Errorf("%w: %d bytes, want %d or %d",
			ErrInvalidSigningKey, len(raw), ed25519.SeedSize, ed25519.PrivateKeySize)
	}
}

type issueTokenRequest struct {
	InstalledAppID string `msgpack:"installed_app_id"`
	ExpirySeconds  uint64 `msgpack:"expiry_seconds"`
	SingleUse      bool   `msgpack:"single_use"`
}

type issuedToken struct {
	Token []byte `msgpack:"token"`
}

type appAuthentication struct {
	Token []byte `msgpack:"token"`
}

type appInfo struct {
	InstalledAppID string                `msgpack:"installed_app_id"`
	AgentPubKey    []byte                `msgpack:"agent_pub_key"`
	CellInfo       map[string][]cellInfo `msgpack:"cell_info"`
}

type cellInfo struct {
	Provisioned *provisionedCell `msgpack:"provisioned"`
}

type provisionedCell struct {
	CellID CellID `msgpack:"cell_id"`
	Name   string `msgpack:"name"`
}

// Connect performs the full conductor handshake: issue an app
// authentication token over the admin interface, authenticate the app
// interface with it, and resolve the cell for the configured role.
func Connect(ctx context.Context, cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if len(cfg.SigningKey) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidSigningKey, len(cfg.SigningKey))
	}

	provenance, err := NewAgentPubKey(cfg.SigningKey.Public().(ed25519.PublicKey))
	if err != nil {
		return nil, err
	}

	token, err := issueToken(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	appURL := fmt.Sprintf("ws://%s:%d", cfg.Host, cfg.AppPort)
	appConn, err := dialConn(ctx, appURL, logger)
	if err != nil {
		return nil, err
	}
	if err := appConn.authenticate(&appAuthentication{Token: token}); err != nil {
		appConn.close()
		return nil, fmt.Errorf("authenticating app interface: %w", err)
	}

	c := &Client{
		cfg:        cfg,
		logger:     logger.With().Str("component", "ledger").Str("app_id", cfg.AppID).Logger(),
		conn:       appConn,
		provenance: provenance,
	}

	cell, err := c.resolveCell(ctx)
	if err != nil {
		appConn.close()
		return nil, err
	}
	c.cell = cell

	c.logger.Info().
		Str("role", cfg.RoleName).
		Str("dna", cell.Dna.String()).
		Str("agent", cell.Agent.String()).
		Msg("Connected to conductor")
	return c, nil
}

// Close tears down the app interface connection.
func (c *Client) Close() {
	c.conn.close()
}

// issueToken asks the admin interface for a single-use app
// authentication token and closes the admin connection again.
func issueToken(ctx context.Context, cfg Config, logger zerolog.Logger) ([]byte, error) {
	adminURL := fmt.Sprintf("ws://%s:%d", cfg.Host, cfg.AdminPort)
	adminConn, err := dialConn(ctx, adminURL, logger)
	if err != nil {
		return nil, err
	}
	defer adminConn.close()

	req, err := encodeTagged("issue_app_authentication_token", &issueTokenRequest{
		InstalledAppID: cfg.AppID,
		ExpirySeconds:  tokenExpirySeconds,
		SingleUse:      true,
	})
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	payload, err := adminConn.request(callCtx, req)
	if err != nil {
		return nil, fmt.Errorf("issuing authentication token: %w", err)
	}

	var issued issuedToken
	if err := decodeTaggedInto(payload, "app_authentication_token_issued", &issued); err != nil {
		return nil, err
	}
	if len(issued.Token) == 0 {
		return nil, fmt.Errorf("%w: empty authentication token", ErrUnexpectedResponse)
	}
	return issued.Token, nil
}

// resolveCell fetches app info and picks the provisioned cell for the
// configured role name.
func (c *Client) resolveCell(ctx context.Context) (CellID, error) {
	req, err := encodeTagged("app_info", nil)
	if err != nil {
		return CellID{}, err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()
	payload, err := c.conn.request(callCtx, req)
	if err != nil {
		return CellID{}, fmt.Errorf("fetching app info: %w", err)
	}

	var info *appInfo
	if err := decodeTaggedInto(payload, "app_info", &info); err != nil {
		return CellID{}, err
	}
	if info == nil {
		return CellID{}, fmt.Errorf("%w: %s", ErrAppNotFound, c.cfg.AppID)
	}

	for _, ci := range info.CellInfo[c.cfg.RoleName] {
		if ci.Provisioned != nil {
			return ci.Provisioned.CellID, nil
		}
	}
	return CellID{}, fmt.Errorf("%w: %s", ErrRoleNotFound, c.cfg.RoleName)
}

type zomeCallParams struct {
	Provenance AgentPubKey `msgpack:"provenance"`
	CellID     CellID      `msgpack:"cell_id"`
	ZomeName   string      `msgpack:"zome_name"`
	FnName     string      `msgpack:"fn_name"`
	CapSecret  []byte      `msgpack:"cap_secret"`
	Payload    []byte      `msgpack:"payload"`
	Nonce      []byte      `msgpack:"nonce"`
	ExpiresAt  int64       `msgpack:"expires_at"`
}

type signedZomeCall struct {
	Signature  []byte      `msgpack:"signature"`
	Provenance AgentPubKey `msgpack:"provenance"`
	CellID     CellID      `msgpack:"cell_id"`
	ZomeName   string      `msgpack:"zome_name"`
	FnName     string      `msgpack:"fn_name"`
	CapSecret  []byte      `msgpack:"cap_secret"`
	Payload    []byte      `msgpack:"payload"`
	Nonce      []byte      `msgpack:"nonce"`
	ExpiresAt  int64       `msgpack:"expires_at"`
}

// CallZome invokes fn on the configured zome with payload and decodes
// the zome's return value into out when out is non-nil. The call is
// signed with the configured key; the conductor verifies the signature
// against the provenance before dispatching.
func (c *Client) CallZome(ctx context.Context, fn string, payload, out interface{}) error {
	start := time.Now()
	err := c.callZome(ctx, fn, payload, out)

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.RecordLedgerCall(fn, status, time.Since(start))
	return err
}

func (c *Client) callZome(ctx context.Context, fn string, payload, out interface{}) error {
	body, err := msgpack.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding zome payload: %w", err)
	}

	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generating nonce: %w", err)
	}

	params := zomeCallParams{
		Provenance: c.provenance,
		CellID:     c.cell,
		ZomeName:   c.cfg.ZomeName,
		FnName:     fn,
		Payload:    body,
		Nonce:      nonce,
		ExpiresAt:  time.Now().Add(callExpiry).UnixMicro(),
	}
	signature, err := c.sign(&params)
	if err != nil {
		return err
	}

	req, err := encodeTagged("call_zome", &signedZomeCall{
		Signature:  signature,
		Provenance: params.Provenance,
		CellID:     params.CellID,
		ZomeName:   params.ZomeName,
		FnName:     params.FnName,
		CapSecret:  params.CapSecret,
		Payload:    params.Payload,
		Nonce:      params.Nonce,
		ExpiresAt:  params.ExpiresAt,
	})
	if err != nil {
		return err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()
	c.logger.Debug().Str("zome", c.cfg.ZomeName).Str("fn", fn).Msg("calling zome")
	payloadBytes, err := c.conn.request(callCtx, req)
	if err != nil {
		return fmt.Errorf("calling %s/%s: %w", c.cfg.ZomeName, fn, err)
	}

	var result []byte
	if err := decodeTaggedInto(payloadBytes, "zome_called", &result); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := msgpack.Unmarshal(result, out); err != nil {
		return fmt.Errorf("decoding %s result: %w", fn, err)
	}
	return nil
}

// sign hashes the serialized call parameters with blake2b-256 and signs
// the digest. The conductor recomputes the same digest on its side.
func (c *Client) sign(params *zomeCallParams) ([]byte, error) {
	raw, err := msgpack.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("encoding call for signing: %w", err)
	}
	digest := blake2b.Sum256(raw)
	return ed25519.Sign(c.cfg.SigningKey, digest[:]), nil
}

type globalDefinitionRecord struct {
	ID string `msgpack:"id"`
}

// FetchGlobalDefinition asks the zome for the current global definition
// and returns its action hash.
func (c *Client) FetchGlobalDefinition(ctx context.Context) (ActionHash, error) {
	var record *globalDefinitionRecord
	if err := c.CallZome(ctx, "get_current_global_definition", nil, &record); err != nil {
		return nil, err
	}
	if record == nil || record.ID == "" {
		return nil, fmt.Errorf("%w: no global definition published", ErrUnexpectedResponse)
	}

	hash, err := ActionHashFromB64(record.ID)
	if err != nil {
		return nil, fmt.Errorf("global definition id: %w", err)
	}
	c.logger.Debug().Str("global_definition", hash.String()).Msg("fetched global definition")
	return hash, nil
}

// SubmitConversionTable publishes a conversion table and returns the
// action hash of the created entry. The table is the zome payload as is.
func (c *Client) SubmitConversionTable(ctx context.Context, table interface{}) (ActionHash, error) {
	var raw []byte
	if err := c.CallZome(ctx, "create_conversion_table", table, &raw); err != nil {
		return nil, err
	}

	hash, err := ActionHashFromBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("created table hash: %w", err)
	}
	return hash, nil
}
