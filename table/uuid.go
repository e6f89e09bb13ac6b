package table

import (
	"fmt"
	"reflect"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/google/uuid"
)

// uuidExtensionName identifies the read id column type in on-disk schema
// metadata. Any reader of the container matches on this name.
const uuidExtensionName = "minknow.uuid"

// UUIDType is the 128-bit read id column type: an extension over
// fixed-size-binary(16).
type UUIDType struct {
	arrow.ExtensionBase
}

// NewUUIDType returns the read id extension type.
func NewUUIDType() *UUIDType {
	return &UUIDType{ExtensionBase: arrow.ExtensionBase{
		Storage: &arrow.FixedSizeBinaryType{ByteWidth: 16},
	}}
}

func (*UUIDType) ArrayType() reflect.Type { return reflect.TypeOf(UUIDArray{}) }

func (*UUIDType) ExtensionName() string { return uuidExtensionName }

func (t *UUIDType) String() string { return "extension<" + t.ExtensionName() + ">" }

func (t *UUIDType) ExtensionEquals(other arrow.ExtensionType) bool {
	return t.ExtensionName() == other.ExtensionName()
}

func (*UUIDType) Serialize() string { return "" }

func (t *UUIDType) Deserialize(storage arrow.DataType, _ string) (arrow.ExtensionType, error) {
	if !arrow.TypeEqual(storage, t.Storage) {
		return nil, fmt.Errorf("%s: invalid storage type %s", uuidExtensionName, storage)
	}
	return NewUUIDType(), nil
}

// UUIDArray is the array form of UUIDType.
type UUIDArray struct {
	array.ExtensionArrayBase
}

// Value returns the uuid at row i.
func (a *UUIDArray) Value(i int) uuid.UUID {
	id, _ := uuid.FromBytes(a.Storage().(*array.FixedSizeBinary).Value(i))
	return id
}

func init() {
	if arrow.GetExtensionType(uuidExtensionName) == nil {
		if err := arrow.RegisterExtensionType(NewUUIDType()); err != nil {
			panic(err)
		}
	}
}
