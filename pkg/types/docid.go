package types

import (
	"crypto/sha256"
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// DocID identifies a configuration document by the SHA-256 of its content.
type DocID [sha256.Size]byte

// ComputeDocID hashes content.
func ComputeDocID(content []byte) DocID {
	return DocID(sha256.Sum256(content))
}

// Hex returns the 64-character hex form.
func (id DocID) Hex() string {
	return hex.EncodeToString(id[:])
}

func (id DocID) String() string {
	return id.Hex()
}

// Short returns the first 12 hex characters, for display.
func (id DocID) Short() string {
	return id.Hex()[:12]
}

// ParseDocID parses the hex form produced by Hex.
func ParseDocID(s string) (DocID, error) {
	if len(s) != 2*sha256.Size {
		return DocID{}, fmt.Errorf("invalid document ID length: expected %d, got %d", 2*sha256.Size, len(s))
	}

	raw, err := hex.DecodeString(s)
	if err != nil {
		return DocID{}, fmt.Errorf("invalid document ID: %w", err)
	}

	var id DocID
	copy(id[:], raw)
	return id, nil
}

func (id DocID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.Hex())
}

func (id *DocID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDocID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Value implements driver.Valuer.
func (id DocID) Value() (driver.Value, error) {
	return id.Hex(), nil
}

// Scan implements sql.Scanner.
func (id *DocID) Scan(value any) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into DocID", value)
	}
	parsed, err := ParseDocID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
