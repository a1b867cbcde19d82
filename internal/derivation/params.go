package derivation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

var errNotArray = errors.New("params are not a json array")

func decodeParams(raw json.RawMessage) ([]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var params []any
	if err := dec.Decode(&params); err != nil {
		return nil, errNotArray
	}
	if params == nil {
		return nil, errNotArray
	}
	return params, nil
}

func parseTransferParams(params []any) (string, string, decimal.Decimal, error) {
	if params == nil {
		return "", "", decimal.Zero, errNotArray
	}
	if len(params) != fungibleParamCount {
		return "", "", decimal.Zero, fmt.Errorf("expected %d params, got %d", fungibleParamCount, len(params))
	}
	from, ok := params[0].(string)
	if !ok {
		return "", "", decimal.Zero, fmt.Errorf("sender is %T, want string", params[0])
	}
	to, ok := params[1].(string)
	if !ok {
		return "", "", decimal.Zero, fmt.Errorf("receiver is %T, want string", params[1])
	}
	if from == "" && to == "" {
		return "", "", decimal.Zero, errors.New("sender and receiver are both empty")
	}
	amount, err := parseAmount(params[2])
	if err != nil {
		return "", "", decimal.Zero, fmt.Errorf("parse amount: %w", err)
	}
	return from, to, amount, nil
}

// parseAmount accepts a plain JSON number, {"decimal": "<text>"} or {"int": <n>}.
func parseAmount(v any) (decimal.Decimal, error) {
	switch value := v.(type) {
	case json.Number:
		return decimal.NewFromString(value.String())
	case map[string]any:
		if d, ok := value["decimal"]; ok {
			switch text := d.(type) {
			case string:
				return decimal.NewFromString(text)
			case json.Number:
				return decimal.NewFromString(text.String())
			}
			return decimal.Zero, fmt.Errorf("decimal field is %T", d)
		}
		if i, ok := value["int"]; ok {
			return parseInt(i)
		}
		return decimal.Zero, errors.New("object amount without decimal or int field")
	default:
		return decimal.Zero, fmt.Errorf("amount is %T", v)
	}
}

func parseInt(v any) (decimal.Decimal, error) {
	var text string
	switch value := v.(type) {
	case json.Number:
		text = value.String()
	case string:
		text = value
	default:
		return decimal.Zero, fmt.Errorf("int field is %T", v)
	}
	n, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return decimal.Zero, fmt.Errorf("int field %q is not an integer", text)
	}
	return decimal.NewFromBigInt(n, 0), nil
}
