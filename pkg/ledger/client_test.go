package ledger

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/crypto/blake2b"
)

func TestParseSigningKey(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i * 3)
	}

	key, err := ParseSigningKey(base64.StdEncoding.EncodeToString(seed))
	require.NoError(t, err)
	assert.Len(t, []byte(key), ed25519.PrivateKeySize)

	// The full private key form round-trips through the URL alphabet too.
	full, err := ParseSigningKey(base64.RawURLEncoding.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, full)

	_, err = ParseSigningKey("")
	assert.ErrorIs(t, err, ErrInvalidSigningKey)

	_, err = ParseSigningKey("definitely not base64!!!")
	assert.ErrorIs(t, err, ErrInvalidSigningKey)

	_, err = ParseSigningKey(base64.StdEncoding.EncodeToString(seed[:10]))
	assert.ErrorIs(t, err, ErrInvalidSigningKey)
}

// fakeConductor runs admin and app websocket endpoints speaking the
// conductor envelope protocol against in-memory state.
type fakeConductor struct {
	t *testing.T

	adminSrv *httptest.Server
	appSrv   *httptest.Server

	cell CellID

	mu        sync.Mutex
	authToken []byte
	submitted []byte
}

func newFakeConductor(t *testing.T) *fakeConductor {
	t.Helper()

	dna := make([]byte, hashFullLen)
	copy(dna, dnaHashPrefix)
	agent := make([]byte, hashFullLen)
	copy(agent, agentKeyPrefix)
	agent[10] = 0x11

	fc := &fakeConductor{
		t:    t,
		cell: CellID{Dna: dna, Agent: agent},
	}
	fc.adminSrv = httptest.NewServer(http.HandlerFunc(fc.handleAdmin))
	fc.appSrv = httptest.NewServer(http.HandlerFunc(fc.handleApp))
	t.Cleanup(fc.adminSrv.Close)
	t.Cleanup(fc.appSrv.Close)
	return fc
}

func (fc *fakeConductor) adminPort() uint16 { return serverPort(fc.t, fc.adminSrv) }
func (fc *fakeConductor) appPort() uint16   { return serverPort(fc.t, fc.appSrv) }

func serverPort(t *testing.T, srv *httptest.Server) uint16 {
	t.Helper()
	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parsing server url: %v", err)
	}
	port, err := strconv.ParseUint(u.Port(), 10, 16)
	if err != nil {
		t.Fatalf("parsing server port: %v", err)
	}
	return uint16(port)
}

var testUpgrader = websocket.Upgrader{}

func (fc *fakeConductor) handleAdmin(w http.ResponseWriter, r *http.Request) {
	ws, err := testUpgrader.Upgrade(w, r, nil)
	if err != nil {
		fc.t.Errorf("admin upgrade failed: %v", err)
		return
	}
	defer ws.Close()

	for {
		var msg wireMessage
		if !readEnvelope(ws, &msg) {
			return
		}

		kind, _, err := decodeTagged(msg.Data)
		if err != nil {
			fc.t.Errorf("admin request decode failed: %v", err)
			return
		}
		if kind != "issue_app_authentication_token" {
			fc.t.Errorf("unexpected admin request kind %q", kind)
			return
		}

		respond(fc.t, ws, msg.ID, "app_authentication_token_issued",
			&issuedToken{Token: []byte("test-token")})
	}
}

func (fc *fakeConductor) handleApp(w http.ResponseWriter, r *http.Request) {
	ws, err := testUpgrader.Upgrade(w, r, nil)
	if err != nil {
		fc.t.Errorf("app upgrade failed: %v", err)
		return
	}
	defer ws.Close()

	for {
		var msg wireMessage
		if !readEnvelope(ws, &msg) {
			return
		}

		if msg.Type == wireTypeAuthenticate {
			var auth appAuthentication
			if err := msgpack.Unmarshal(msg.Data, &auth); err != nil {
				fc.t.Errorf("decoding authentication: %v", err)
				return
			}
			fc.mu.Lock()
			fc.authToken = auth.Token
			fc.mu.Unlock()
			continue
		}

		kind, body, err := decodeTagged(msg.Data)
		if err != nil {
			fc.t.Errorf("app request decode failed: %v", err)
			return
		}

		switch kind {
		case "app_info":
			respond(fc.t, ws, msg.ID, "app_info", &appInfo{
				InstalledAppID: "bridging-app",
				CellInfo: map[string][]cellInfo{
					"alliance": {{Provisioned: &provisionedCell{CellID: fc.cell, Name: "alliance"}}},
				},
			})
		case "call_zome":
			fc.handleZomeCall(ws, msg.ID, body)
		default:
			fc.t.Errorf("unexpected app request kind %q", kind)
			return
		}
	}
}

func (fc *fakeConductor) handleZomeCall(ws *websocket.Conn, id uint64, body msgpack.RawMessage) {
	var signed signedZomeCall
	if err := msgpack.Unmarshal(body, &signed); err != nil {
		fc.t.Errorf("decoding zome call: %v", err)
		return
	}

	// Recompute the digest the way the conductor does and check the
	// signature against the provenance key.
	params := zomeCallParams{
		Provenance: signed.Provenance,
		CellID:     signed.CellID,
		ZomeName:   signed.ZomeName,
		FnName:     signed.FnName,
		CapSecret:  signed.CapSecret,
		Payload:    signed.Payload,
		Nonce:      signed.Nonce,
		ExpiresAt:  signed.ExpiresAt,
	}
	raw, err := msgpack.Marshal(&params)
	if err != nil {
		fc.t.Errorf("re-encoding call params: %v", err)
		return
	}
	digest := blake2b.Sum256(raw)
	pub := ed25519.PublicKey(signed.Provenance[hashPrefixLen : hashPrefixLen+hashCoreLen])
	if !ed25519.Verify(pub, digest[:], signed.Signature) {
		fc.t.Error("zome call signature does not verify")
	}
	if signed.ZomeName != "transactor" {
		fc.t.Errorf("unexpected zome name %q", signed.ZomeName)
	}

	switch signed.FnName {
	case "get_current_global_definition":
		gd := ZeroActionHash()
		gd[9] = 0x03
		inner, err := msgpack.Marshal(&globalDefinitionRecord{ID: gd.String()})
		if err != nil {
			fc.t.Errorf("encoding global definition: %v", err)
			return
		}
		respond(fc.t, ws, id, "zome_called", inner)
	case "create_conversion_table":
		fc.mu.Lock()
		fc.submitted = signed.Payload
		fc.mu.Unlock()

		created := ZeroActionHash()
		created[12] = 0x07
		inner, err := msgpack.Marshal([]byte(created))
		if err != nil {
			fc.t.Errorf("encoding created hash: %v", err)
			return
		}
		respond(fc.t, ws, id, "zome_called", inner)
	default:
		fc.t.Errorf("unexpected zome fn %q", signed.FnName)
	}
}

func readEnvelope(ws *websocket.Conn, msg *wireMessage) bool {
	_, raw, err := ws.ReadMessage()
	if err != nil {
		return false
	}
	return msgpack.Unmarshal(raw, msg) == nil
}

func respond(t *testing.T, ws *websocket.Conn, id uint64, kind string, body interface{}) {
	t.Helper()

	payload, err := encodeTagged(kind, body)
	if err != nil {
		t.Errorf("encoding %s response: %v", kind, err)
		return
	}
	raw, err := msgpack.Marshal(wireMessage{ID: id, Type: wireTypeResponse, Data: payload})
	if err != nil {
		t.Errorf("encoding response envelope: %v", err)
		return
	}
	if err := ws.WriteMessage(websocket.BinaryMessage, raw); err != nil {
		t.Errorf("writing response: %v", err)
	}
}

func testConfig(fc *fakeConductor, key ed25519.PrivateKey) Config {
	return Config{
		Host:       "127.0.0.1",
		AdminPort:  fc.adminPort(),
		AppPort:    fc.appPort(),
		AppID:      "bridging-app",
		RoleName:   "alliance",
		ZomeName:   "transactor",
		Timeout:    5 * time.Second,
		SigningKey: key,
	}
}

func TestClient_ConnectAndCall(t *testing.T) {
	fc := newFakeConductor(t)
	_, key, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	ctx := context.Background()
	client, err := Connect(ctx, testConfig(fc, key), zerolog.Nop())
	require.NoError(t, err)
	defer client.Close()

	fc.mu.Lock()
	assert.Equal(t, []byte("test-token"), fc.authToken)
	fc.mu.Unlock()
	assert.Equal(t, fc.cell.Dna, client.cell.Dna)
	assert.Equal(t, fc.cell.Agent, client.cell.Agent)

	gd, err := client.FetchGlobalDefinition(ctx)
	require.NoError(t, err)
	want := ZeroActionHash()
	want[9] = 0x03
	assert.Equal(t, want, gd)

	table := map[string]interface{}{"reference_unit": map[string]string{"symbol": "$"}}
	created, err := client.SubmitConversionTable(ctx, table)
	require.NoError(t, err)
	wantCreated := ZeroActionHash()
	wantCreated[12] = 0x07
	assert.Equal(t, wantCreated, created)

	// The zome received the table as its direct payload.
	fc.mu.Lock()
	submitted := fc.submitted
	fc.mu.Unlock()
	var decoded map[string]interface{}
	require.NoError(t, msgpack.Unmarshal(submitted, &decoded))
	assert.Contains(t, decoded, "reference_unit")
}

func TestClient_ConnectRejectsBadKey(t *testing.T) {
	fc := newFakeConductor(t)

	_, err := Connect(context.Background(), testConfig(fc, []byte("short")), zerolog.Nop())
	assert.ErrorIs(t, err, ErrInvalidSigningKey)
}

func TestClient_RoleNotFound(t *testing.T) {
	fc := newFakeConductor(t)
	_, key, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	cfg := testConfig(fc, key)
	cfg.RoleName = "missing-role"

	_, err = Connect(context.Background(), cfg, zerolog.Nop())
	assert.ErrorIs(t, err, ErrRoleNotFound)
}

func TestConnRequest_ContextExpiry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		// Swallow requests without answering.
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	c, err := dialConn(context.Background(), "ws://"+srv.Listener.Addr().String(), zerolog.Nop())
	require.NoError(t, err)
	defer c.close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = c.request(ctx, []byte{0x01})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConnRequest_AfterClose(t *testing.T) {
	fc := newFakeConductor(t)

	c, err := dialConn(context.Background(), "ws://127.0.0.1:"+strconv.Itoa(int(fc.adminPort())), zerolog.Nop())
	require.NoError(t, err)
	c.close()

	_, err = c.request(context.Background(), []byte{0x01})
	assert.ErrorIs(t, err, ErrConnectionClosed)
}
