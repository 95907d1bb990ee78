package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"budget/internal/core"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

var errInvalidBody = errors.New("invalid request body")

// amount accepts a JSON number, a numeric string or null.
type amount float64

func (a *amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*a = 0
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			*a = 0
			return nil
		}
		v, err := core.ParseAmount(s)
		if err != nil {
			return fmt.Errorf("amount %q: %w", s, err)
		}
		*a = amount(v)
		return nil
	default:
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		*a = amount(v)
		return nil
	}
}

type transactionBody struct {
	Text     string `json:"text"`
	Amount   amount `json:"amount"`
	Category string `json:"category"`
	Date     string `json:"date"`
}

// decodeInput reads the transaction fields of a request body. Missing fields
// stay zero and an empty body counts as {}.
func decodeInput(w http.ResponseWriter, r *http.Request) (core.TransactionInput, error) {
	var body transactionBody
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		return core.TransactionInput{}, fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return core.TransactionInput{
		Text:     body.Text,
		Amount:   float64(body.Amount),
		Category: body.Category,
		Date:     body.Date,
	}, nil
}

// parseID reads the leading integer of s the way a lenient parser would:
// surrounding junk after the digits is ignored ("12abc" is 12).
func parseID(s string) (int64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	id, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
