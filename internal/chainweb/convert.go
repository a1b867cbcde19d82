package chainweb

import (
	"cmp"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"slices"
	"strings"
	"time"

	"github.com/goodnatureofminers/chainweb-indexer/internal/model"
	"github.com/goodnatureofminers/chainweb-indexer/pkg/safe"
	"github.com/shopspring/decimal"
)

var emptyParams = json.RawMessage("[]")

func sortHeaders(headers []wireHeader) {
	slices.SortFunc(headers, func(a, b wireHeader) int {
		return cmp.Compare(a.Height, b.Height)
	})
}

// decodeBase64URL decodes chainweb's unpadded base64url, accepting padding too.
func decodeBase64URL(s string) ([]byte, error) {
	s = strings.TrimRight(s, "=")
	return base64.RawURLEncoding.DecodeString(s)
}

// decodeWord decodes a base64url little-endian unsigned integer such as a
// header's weight or target.
func decodeWord(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	raw, err := decodeBase64URL(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	be := make([]byte, len(raw))
	for i, b := range raw {
		be[len(raw)-1-i] = b
	}
	return decimal.NewFromBigInt(new(big.Int).SetBytes(be), 0), nil
}

func micros(v uint64) (time.Time, error) {
	us, err := safe.Int64(v)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMicro(us).UTC(), nil
}

func convertBlock(h wireHeader, p payloadWithOutputs, powHash string) (*model.FullBlock, error) {
	created, err := micros(h.CreationTime)
	if err != nil {
		return nil, fmt.Errorf("creation time: %w", err)
	}
	epoch, err := micros(h.EpochStart)
	if err != nil {
		return nil, fmt.Errorf("epoch start: %w", err)
	}
	weight, err := decodeWord(h.Weight)
	if err != nil {
		return nil, fmt.Errorf("weight: %w", err)
	}
	target, err := decodeWord(h.Target)
	if err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}
	nonce, err := decimalText(h.Nonce)
	if err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}
	flags, err := decimalText(h.FeatureFlags.String())
	if err != nil {
		return nil, fmt.Errorf("feature flags: %w", err)
	}
	miner, err := convertMinerData(p.MinerData)
	if err != nil {
		return nil, fmt.Errorf("miner data: %w", err)
	}

	fb := &model.FullBlock{Block: model.Block{
		ChainID:      model.ChainID(h.ChainID),
		Hash:         h.Hash,
		Height:       h.Height,
		Parent:       h.Parent,
		CreationTime: created,
		Epoch:        epoch,
		Flags:        flags,
		Miner:        miner.Account,
		Predicate:    miner.Predicate,
		Nonce:        nonce,
		Payload:      h.PayloadHash,
		PowHash:      powHash,
		Target:       target,
		Weight:       weight,
	}}

	meta, err := json.Marshal(txMetadata{
		BlockHash:     h.Hash,
		BlockHeight:   h.Height,
		BlockTime:     created.UnixMicro(),
		PrevBlockHash: h.Parent,
	})
	if err != nil {
		return nil, fmt.Errorf("transaction metadata: %w", err)
	}

	for i, pair := range p.Transactions {
		tx, events, err := convertTransaction(fb.Block, pair, meta)
		if err != nil {
			return nil, fmt.Errorf("transaction %d of block %s: %w", i, h.Hash, err)
		}
		fb.Transactions = append(fb.Transactions, tx)
		fb.Events = append(fb.Events, events...)
	}
	return fb, nil
}

func decimalText(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func convertMinerData(encoded string) (minerData, error) {
	var md minerData
	if encoded == "" {
		return md, nil
	}
	raw, err := decodeBase64URL(encoded)
	if err != nil {
		return md, err
	}
	if err := json.Unmarshal(raw, &md); err != nil {
		return md, err
	}
	return md, nil
}

func convertTransaction(b model.Block, pair [2]string, meta json.RawMessage) (model.Transaction, []model.Event, error) {
	rawTx, err := decodeBase64URL(pair[0])
	if err != nil {
		return model.Transaction{}, nil, fmt.Errorf("decode signed command: %w", err)
	}
	var signed signedCommand
	if err := json.Unmarshal(rawTx, &signed); err != nil {
		return model.Transaction{}, nil, fmt.Errorf("parse signed command: %w", err)
	}
	var cmd command
	if err := json.Unmarshal([]byte(signed.Cmd), &cmd); err != nil {
		return model.Transaction{}, nil, fmt.Errorf("parse command %s: %w", signed.Hash, err)
	}
	rawOut, err := decodeBase64URL(pair[1])
	if err != nil {
		return model.Transaction{}, nil, fmt.Errorf("decode output: %w", err)
	}
	var out commandResult
	if err := json.Unmarshal(rawOut, &out); err != nil {
		return model.Transaction{}, nil, fmt.Errorf("parse output of %s: %w", signed.Hash, err)
	}

	requestKey := out.ReqKey
	if requestKey == "" {
		requestKey = signed.Hash
	}
	tx := model.Transaction{
		Block:        b.Hash,
		RequestKey:   requestKey,
		ChainID:      b.ChainID,
		Height:       b.Height,
		CreationTime: b.CreationTime,
		Continuation: nullable(out.Continuation),
		GoodResult:   nullable(out.Result.Data),
		BadResult:    nullable(out.Result.Error),
		Gas:          out.Gas,
		GasLimit:     int64(cmd.Meta.GasLimit),
		GasPrice:     float64(cmd.Meta.GasPrice),
		Metadata:     meta,
		Nonce:        cmd.Nonce,
		Sender:       cmd.Meta.Sender,
		TTL:          int64(cmd.Meta.TTL),
		TxID:         out.TxID,
	}
	if out.Logs != nil && *out.Logs != "" {
		tx.Logs = out.Logs
	}
	switch {
	case cmd.Payload.Exec != nil:
		code := cmd.Payload.Exec.Code
		tx.Code = &code
		tx.Data = nullable(cmd.Payload.Exec.Data)
	case cmd.Payload.Cont != nil:
		tx.Data = nullable(cmd.Payload.Cont.Data)
		tx.Proof = cmd.Payload.Cont.Proof
	}
	if tx.Continuation != nil {
		var cont continuation
		if err := json.Unmarshal(tx.Continuation, &cont); err != nil {
			return model.Transaction{}, nil, fmt.Errorf("parse continuation of %s: %w", requestKey, err)
		}
		pactID, step, rollback := cont.PactID, cont.Step, cont.StepHasRollback
		tx.PactID = &pactID
		tx.Step = &step
		tx.Rollback = &rollback
	}
	if out.Events != nil {
		n := int64(len(out.Events))
		tx.NumEvents = &n
	}

	events := make([]model.Event, 0, len(out.Events))
	for i, we := range out.Events {
		module := we.Module.Name
		if we.Module.Namespace != nil && *we.Module.Namespace != "" {
			module = *we.Module.Namespace + "." + module
		}
		params := nullable(we.Params)
		if params == nil {
			params = emptyParams
		}
		events = append(events, model.Event{
			Block:      b.Hash,
			RequestKey: requestKey,
			Idx:        int64(i),
			ChainID:    b.ChainID,
			Height:     b.Height,
			Module:     module,
			ModuleHash: we.ModuleHash,
			Name:       we.Name,
			Params:     params,
			ParamText:  string(params),
			QualName:   module + "." + we.Name,
			PactID:     tx.PactID,
		})
	}
	return tx, events, nil
}

// nullable maps an absent or null JSON value to nil.
func nullable(raw json.RawMessage) json.RawMessage {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return nil
	}
	return raw
}
