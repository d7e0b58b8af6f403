// Package gid encodes database identifiers into the opaque global-id
// scheme exposed through the GraphQL API.
package gid

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalid = errors.New("invalid global id")

// Encode packs a type name and a local id into an opaque identifier.
func Encode(typeName string, id int64) string {
	raw := fmt.Sprintf("%s:%d", typeName, id)
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// Decode unpacks an identifier produced by Encode. The expected type
// name may be empty to accept any type.
func Decode(global string, expectedType string) (int64, error) {
	raw, err := base64.StdEncoding.DecodeString(global)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	typeName, idPart, ok := strings.Cut(string(raw), ":")
	if !ok {
		return 0, ErrInvalid
	}
	if expectedType != "" && typeName != expectedType {
		return 0, fmt.Errorf("%w: expected %s, got %s", ErrInvalid, expectedType, typeName)
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return id, nil
}
