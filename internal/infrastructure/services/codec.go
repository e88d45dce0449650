package services

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/sophialabs/scenarioadmin/internal/domain/scenario"
)

// encodeDocument serializes doc the way it is stored: two-space indented JSON
// with a trailing newline, base64 encoded for transport.
func encodeDocument(doc *scenario.Document) (string, error) {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", scenario.Errorf(scenario.KindInternal, "encoding document: %w", err)
	}
	raw = append(raw, '\n')
	return base64.StdEncoding.EncodeToString(raw), nil
}

// decodeDocument reverses encodeDocument. The content API wraps base64 at 60
// columns, so whitespace is stripped before decoding.
func decodeDocument(content string) (*scenario.Document, error) {
	compact := strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, content)

	raw, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		return nil, scenario.Errorf(scenario.KindMalformedDocument, "content is not valid base64: %w", err)
	}

	var doc scenario.Document
	if err := decodeJSON(raw, &doc); err != nil {
		return nil, scenario.Errorf(scenario.KindMalformedDocument, "content is not a scenario document: %w", err)
	}
	return &doc, nil
}

func decodeJSON(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}

var errTrailingData = scenario.Errorf(scenario.KindMalformedDocument, "unexpected data after document")
