package inspect

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// cborEncMode uses canonical mode so the same module always exports to
// identical bytes.
var cborEncMode cbor.EncMode

var cborDecMode cbor.DecMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("inspect: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em

	dm, err := cbor.DecOptions{
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("inspect: failed to create CBOR dec mode: %v", err))
	}
	cborDecMode = dm
}

// Marshal serializes a Document to CBOR bytes.
func Marshal(d *Document) ([]byte, error) {
	return cborEncMode.Marshal(d)
}

// Unmarshal deserializes a Document from CBOR bytes. Unknown fields are
// rejected.
func Unmarshal(data []byte) (*Document, error) {
	var d Document
	if err := cborDecMode.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("inspect: unmarshal document: %w", err)
	}
	return &d, nil
}
