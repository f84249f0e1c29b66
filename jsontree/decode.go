package jsontree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ParseError describes malformed JSON input with the position where decoding stopped
type ParseError struct {
	Line   int
	Column int
	Offset int64
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("JSON decode error at line %d, col %d: %s", e.Line, e.Column, e.Msg)
}

// Parse decodes a single JSON value from data, preserving object member order.
// Duplicate object keys keep the position of their first occurrence and the
// value of their last one.
func Parse(data []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	root, err := decodeValue(dec)
	if err != nil {
		return nil, newParseError(data, dec, err)
	}

	// Anything but whitespace after the top-level value is an error
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after top-level value")
		}
		return nil, newParseError(data, dec, err)
	}

	return root, nil
}

func decodeValue(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	switch v := tok.(type) {
	case nil:
		return NewNull(), nil
	case bool:
		return NewBool(v), nil
	case json.Number:
		return NewNumber(v), nil
	case string:
		return NewString(v), nil
	case json.Delim:
		switch v {
		case '[':
			arr := NewArray()
			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr.items = append(arr.items, item)
			}
			if err := expectClose(dec); err != nil {
				return nil, err
			}
			return arr, nil
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("expected object key, got %v", keyTok)
				}
				value, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, value)
			}
			if err := expectClose(dec); err != nil {
				return nil, err
			}
			return obj, nil
		}
	}

	return nil, fmt.Errorf("unexpected token %v", tok)
}

func expectClose(dec *json.Decoder) error {
	if _, err := dec.Token(); err != nil {
		if errors.Is(err, io.EOF) {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	return nil
}

func newParseError(data []byte, dec *json.Decoder, err error) *ParseError {
	offset := dec.InputOffset()
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		offset = syntaxErr.Offset
	}
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}

	line, col := position(data, offset)
	return &ParseError{Line: line, Column: col, Offset: offset, Msg: err.Error()}
}

// position converts a byte offset into a 1-based line and column
func position(data []byte, offset int64) (int, int) {
	prefix := data[:offset]
	line := bytes.Count(prefix, []byte{'\n'}) + 1
	col := int(offset) + 1
	if i := bytes.LastIndexByte(prefix, '\n'); i >= 0 {
		col = int(offset) - i
	}
	return line, col
}
