package models

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ID is the document identifier assigned by the store.
//
// It wraps the MongoDB ObjectID so the native type never leaks past the repositories;
// JSON carries it as a 24-character hex string.
type ID struct {
	oid primitive.ObjectID
}

// NewID generates a fresh identifier
func NewID() ID {
	return ID{oid: primitive.NewObjectID()}
}

// ParseID parses a hex-encoded identifier
func ParseID(s string) (ID, error) {
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return ID{}, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return ID{oid: oid}, nil
}

// IsZero reports whether the identifier was never assigned
func (id ID) IsZero() bool {
	return id.oid.IsZero()
}

// String returns the hex representation
func (id ID) String() string {
	return id.oid.Hex()
}

// MarshalJSON encodes the identifier as a hex string
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.oid.Hex())
}

// UnmarshalJSON decodes a hex string identifier
func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// MarshalBSONValue stores the identifier as a native ObjectID
func (id ID) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(id.oid)
}

// UnmarshalBSONValue reads a native ObjectID
func (id *ID) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	if t != bson.TypeObjectID {
		return fmt.Errorf("cannot decode %s into an ID", t)
	}
	return bson.RawValue{Type: t, Value: data}.Unmarshal(&id.oid)
}
