package chainweb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Metrics records metrics for node calls.
	Metrics interface {
		Observe(operation string, err error, started time.Time)
	}
)

type wireBlockHash struct {
	Height int64  `json:"height"`
	Hash   string `json:"hash"`
}

// cutInfo is the node's view of the heads of every chain.
type cutInfo struct {
	Height   int64                    `json:"height"`
	Weight   string                   `json:"weight"`
	Hashes   map[string]wireBlockHash `json:"hashes"`
	Instance string                   `json:"instance"`
	ID       string                   `json:"id"`
}

type wireHeader struct {
	CreationTime    uint64      `json:"creationTime"`
	Parent          string      `json:"parent"`
	Height          int64       `json:"height"`
	Hash            string      `json:"hash"`
	ChainID         int64       `json:"chainId"`
	PayloadHash     string      `json:"payloadHash"`
	Weight          string      `json:"weight"`
	FeatureFlags    json.Number `json:"featureFlags"`
	EpochStart      uint64      `json:"epochStart"`
	ChainwebVersion string      `json:"chainwebVersion"`
	Target          string      `json:"target"`
	Nonce           string      `json:"nonce"`
}

type headerPage struct {
	Items []wireHeader `json:"items"`
	Limit int          `json:"limit"`
	Next  string       `json:"next"`
}

type branchBounds struct {
	Lower []string `json:"lower"`
	Upper []string `json:"upper"`
}

// headerEvent is the data of a BlockHeader server-sent event.
type headerEvent struct {
	Header  wireHeader `json:"header"`
	TxCount int        `json:"txCount"`
	PowHash string     `json:"powHash"`
	Target  string     `json:"target"`
}

type payloadWithOutputs struct {
	Transactions     [][2]string `json:"transactions"`
	MinerData        string      `json:"minerData"`
	Coinbase         string      `json:"coinbase"`
	PayloadHash      string      `json:"payloadHash"`
	TransactionsHash string      `json:"transactionsHash"`
	OutputsHash      string      `json:"outputsHash"`
}

type minerData struct {
	Account    string          `json:"account"`
	Predicate  string          `json:"predicate"`
	PublicKeys json.RawMessage `json:"public-keys"`
}

type signedCommand struct {
	Cmd  string `json:"cmd"`
	Hash string `json:"hash"`
	Sigs []struct {
		Sig string `json:"sig"`
	} `json:"sigs"`
}

type command struct {
	NetworkID *string        `json:"networkId"`
	Nonce     string         `json:"nonce"`
	Payload   commandPayload `json:"payload"`
	Meta      commandMeta    `json:"meta"`
}

type commandPayload struct {
	Exec *execPayload `json:"exec"`
	Cont *contPayload `json:"cont"`
}

type execPayload struct {
	Code string          `json:"code"`
	Data json.RawMessage `json:"data"`
}

type contPayload struct {
	PactID   string          `json:"pactId"`
	Proof    *string         `json:"proof"`
	Rollback bool            `json:"rollback"`
	Step     int64           `json:"step"`
	Data     json.RawMessage `json:"data"`
}

type commandMeta struct {
	CreationTime flexFloat `json:"creationTime"`
	GasLimit     flexInt   `json:"gasLimit"`
	GasPrice     flexFloat `json:"gasPrice"`
	Sender       string    `json:"sender"`
	TTL          flexInt   `json:"ttl"`
}

type commandResult struct {
	ReqKey string `json:"reqKey"`
	Result struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
		Error  json.RawMessage `json:"error"`
	} `json:"result"`
	Gas          int64           `json:"gas"`
	Logs         *string         `json:"logs"`
	Continuation json.RawMessage `json:"continuation"`
	TxID         *int64          `json:"txId"`
	Events       []wireEvent     `json:"events"`
}

type continuation struct {
	PactID          string `json:"pactId"`
	Step            int64  `json:"step"`
	StepHasRollback bool   `json:"stepHasRollback"`
}

type wireEvent struct {
	Module struct {
		Name      string  `json:"name"`
		Namespace *string `json:"namespace"`
	} `json:"module"`
	ModuleHash string          `json:"moduleHash"`
	Name       string          `json:"name"`
	Params     json.RawMessage `json:"params"`
}

type txMetadata struct {
	BlockHash     string `json:"blockHash"`
	BlockHeight   int64  `json:"blockHeight"`
	BlockTime     int64  `json:"blockTime"`
	PrevBlockHash string `json:"prevBlockHash"`
}

// flexInt accepts a JSON number (integral or not) or a numeric string.
type flexInt int64

func (v *flexInt) UnmarshalJSON(b []byte) error {
	s, err := numericText(b)
	if err != nil || s == "" {
		return err
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		*v = flexInt(i)
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse integer %q: %w", s, err)
	}
	*v = flexInt(int64(f))
	return nil
}

// flexFloat accepts a JSON number or a numeric string.
type flexFloat float64

func (v *flexFloat) UnmarshalJSON(b []byte) error {
	s, err := numericText(b)
	if err != nil || s == "" {
		return err
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse number %q: %w", s, err)
	}
	*v = flexFloat(f)
	return nil
}

func numericText(b []byte) (string, error) {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return "", nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	}
	return string(b), nil
}
