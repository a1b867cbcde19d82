package chainweb

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
)

var testNetwork = model.Testnet

const testBlockUs = uint64(1700000000000000)

func b64(raw []byte) string {
	return base64.RawURLEncoding.EncodeToString(raw)
}

// encodeWord encodes v as a 32-byte little-endian base64url word.
func encodeWord(v int64) string {
	be := big.NewInt(v).FillBytes(make([]byte, 32))
	le := make([]byte, len(be))
	for i, b := range be {
		le[len(be)-1-i] = b
	}
	return b64(le)
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return raw
}

func testHeader(chain model.ChainID, height int64, hash, parent, payload string) wireHeader {
	return wireHeader{
		CreationTime:    testBlockUs + uint64(height)*30_000_000,
		Parent:          parent,
		Height:          height,
		Hash:            hash,
		ChainID:         int64(chain),
		PayloadHash:     payload,
		Weight:          encodeWord(height * 10),
		FeatureFlags:    json.Number("0"),
		EpochStart:      testBlockUs,
		ChainwebVersion: string(testNetwork),
		Target:          encodeWord(1 << 20),
		Nonce:           "12345678901234567890",
	}
}

// execTx builds a signed exec command and its output with the given events.
func execTx(t *testing.T, requestKey, code string, events []map[string]any) [2]string {
	t.Helper()
	cmd := mustJSON(t, map[string]any{
		"networkId": string(testNetwork),
		"nonce":     "nonce-" + requestKey,
		"payload": map[string]any{
			"exec": map[string]any{"code": code, "data": map[string]any{"ks": []string{"k"}}},
		},
		"meta": map[string]any{
			"chainId":      "0",
			"creationTime": 1700000000,
			"gasLimit":     "2500",
			"gasPrice":     "0.00000001",
			"sender":       "alice",
			"ttl":          28800,
		},
	})
	signed := mustJSON(t, map[string]any{"cmd": string(cmd), "hash": requestKey, "sigs": []any{}})
	out := mustJSON(t, map[string]any{
		"reqKey":       requestKey,
		"result":       map[string]any{"status": "success", "data": "Write succeeded"},
		"gas":          600,
		"logs":         "logs-" + requestKey,
		"continuation": nil,
		"txId":         77,
		"events":       events,
	})
	return [2]string{b64(signed), b64(out)}
}

// contTx builds a signed continuation command that failed.
func contTx(t *testing.T, requestKey, pactID string) [2]string {
	t.Helper()
	cmd := mustJSON(t, map[string]any{
		"nonce": "cont",
		"payload": map[string]any{
			"cont": map[string]any{"pactId": pactID, "proof": "spv", "rollback": false, "step": 1, "data": nil},
		},
		"meta": map[string]any{"creationTime": "1700000000", "gasLimit": 800, "gasPrice": 1e-6, "sender": "bob", "ttl": "600"},
	})
	signed := mustJSON(t, map[string]any{"cmd": string(cmd), "hash": requestKey, "sigs": []any{}})
	out := mustJSON(t, map[string]any{
		"reqKey":       requestKey,
		"result":       map[string]any{"status": "failure", "error": map[string]any{"message": "boom"}},
		"gas":          800,
		"continuation": map[string]any{"pactId": pactID, "step": 1, "stepHasRollback": true},
		"events":       []any{},
	})
	return [2]string{b64(signed), b64(out)}
}

func transferEvent(from, to string, amount float64) map[string]any {
	return map[string]any{
		"module":     map[string]any{"name": "coin", "namespace": nil},
		"moduleHash": "coin-hash",
		"name":       "TRANSFER",
		"params":     []any{from, to, amount},
	}
}

func testPayload(t *testing.T, hash string, txs ...[2]string) payloadWithOutputs {
	if txs == nil {
		txs = [][2]string{}
	}
	return payloadWithOutputs{
		Transactions: txs,
		MinerData:    b64(mustJSON(t, map[string]any{"account": "miner", "predicate": "keys-all", "public-keys": []string{"pk"}})),
		PayloadHash:  hash,
	}
}

// fakeNode serves the subset of the chainweb node API used by the client.
type fakeNode struct {
	t *testing.T

	mu            sync.Mutex
	headers       map[model.ChainID][]wireHeader
	payloads      map[string]payloadWithOutputs
	events        []string
	cutStatus     int
	payloadStatus int
	branchCalls   int
	payloadCalls  int
	requestedHash [][]string
}

func newFakeNode(t *testing.T) *fakeNode {
	return &fakeNode{
		t:        t,
		headers:  make(map[model.ChainID][]wireHeader),
		payloads: make(map[string]payloadWithOutputs),
	}
}

func (n *fakeNode) addBlock(h wireHeader, p payloadWithOutputs) {
	n.mu.Lock()
	defer n.mu.Unlock()
	chain := model.ChainID(h.ChainID)
	n.headers[chain] = append(n.headers[chain], h)
	n.payloads[p.PayloadHash] = p
}

func (n *fakeNode) addEvent(name string, data []byte) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, fmt.Sprintf("event: %s\ndata: %s\n\n", name, data))
}

func (n *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n.mu.Lock()
	defer n.mu.Unlock()

	prefix := "/chainweb/0.0/" + string(testNetwork)
	path := strings.TrimPrefix(r.URL.Path, prefix)
	switch {
	case path == "/cut" && r.Method == http.MethodGet:
		if n.cutStatus != 0 {
			http.Error(w, "unavailable", n.cutStatus)
			return
		}
		hashes := make(map[string]wireBlockHash)
		for chain, hs := range n.headers {
			top := hs[0]
			for _, h := range hs {
				if h.Height > top.Height {
					top = h
				}
			}
			hashes[chain.String()] = wireBlockHash{Height: top.Height, Hash: top.Hash}
		}
		_ = json.NewEncoder(w).Encode(cutInfo{Hashes: hashes, ID: "cut"})
	case strings.HasSuffix(path, "/header/branch") && r.Method == http.MethodPost:
		n.branchCalls++
		n.serveBranch(w, r, path)
	case strings.HasSuffix(path, "/payload/outputs/batch") && r.Method == http.MethodPost:
		n.payloadCalls++
		if n.payloadStatus != 0 {
			http.Error(w, "payload store unavailable", n.payloadStatus)
			return
		}
		var hashes []string
		if err := json.NewDecoder(r.Body).Decode(&hashes); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		n.requestedHash = append(n.requestedHash, hashes)
		out := make([]payloadWithOutputs, 0, len(hashes))
		for _, h := range hashes {
			if p, ok := n.payloads[h]; ok {
				out = append(out, p)
			}
		}
		_ = json.NewEncoder(w).Encode(out)
	case path == "/header/updates" && r.Method == http.MethodGet:
		w.Header().Set("Content-Type", eventStreamType)
		_, _ = fmt.Fprint(w, ": keep-alive\n\n")
		for _, ev := range n.events {
			_, _ = fmt.Fprint(w, ev)
		}
	default:
		http.NotFound(w, r)
	}
}

// serveBranch answers in descending height order, paging with an offset cursor.
func (n *fakeNode) serveBranch(w http.ResponseWriter, r *http.Request, path string) {
	if r.Header.Get("Accept") != blockHeaderObjectEncoding {
		http.Error(w, "object encoding expected", http.StatusNotAcceptable)
		return
	}
	chainText := strings.TrimSuffix(strings.TrimPrefix(path, "/chain/"), "/header/branch")
	chain, err := strconv.ParseInt(chainText, 10, 64)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	q := r.URL.Query()
	minHeight, _ := strconv.ParseInt(q.Get("minheight"), 10, 64)
	maxHeight, _ := strconv.ParseInt(q.Get("maxheight"), 10, 64)
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("next"))

	var bounds branchBounds
	if err := json.NewDecoder(r.Body).Decode(&bounds); err != nil || len(bounds.Upper) != 1 {
		http.Error(w, "upper bound expected", http.StatusBadRequest)
		return
	}

	var matched []wireHeader
	for _, h := range n.headers[model.ChainID(chain)] {
		if h.Height >= minHeight && h.Height <= maxHeight {
			matched = append(matched, h)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Height > matched[j].Height })

	page := headerPage{Items: []wireHeader{}, Limit: limit}
	end := min(offset+limit, len(matched))
	if offset < len(matched) {
		page.Items = matched[offset:end]
	}
	if end < len(matched) {
		page.Next = strconv.Itoa(end)
	}
	_ = json.NewEncoder(w).Encode(page)
}

func newTestClient(t *testing.T, node *fakeNode, branchLimit int) *Client {
	t.Helper()
	srv := httptest.NewServer(node)
	t.Cleanup(srv.Close)

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	metrics := NewMockMetrics(ctrl)
	metrics.EXPECT().Observe(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	client, err := NewClient(ClientConfig{
		NodeURL:     srv.URL,
		Network:     testNetwork,
		Timeout:     5 * time.Second,
		BranchLimit: branchLimit,
	}, metrics)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}
