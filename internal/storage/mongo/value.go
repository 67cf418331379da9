package mongo

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// money is written as decimal128 and read from any BSON number, so documents
// that store prices as doubles or integers decode as well.
type money struct {
	decimal.Decimal
}

func (m money) MarshalBSONValue() (bsontype.Type, []byte, error) {
	v, err := toDecimal128(m.Decimal)
	if err != nil {
		return 0, nil, err
	}
	return bson.MarshalValue(v)
}

func (m *money) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Decimal128:
		v, ok := raw.Decimal128OK()
		if !ok {
			return errors.New("malformed decimal128")
		}
		d, err := fromDecimal128(v)
		if err != nil {
			return err
		}
		m.Decimal = d
	case bsontype.Double:
		v, ok := raw.DoubleOK()
		if !ok {
			return errors.New("malformed double")
		}
		m.Decimal = decimal.NewFromFloat(v)
	case bsontype.Int32:
		v, ok := raw.Int32OK()
		if !ok {
			return errors.New("malformed int32")
		}
		m.Decimal = decimal.NewFromInt32(v)
	case bsontype.Int64:
		v, ok := raw.Int64OK()
		if !ok {
			return errors.New("malformed int64")
		}
		m.Decimal = decimal.NewFromInt(v)
	case bsontype.Null, bsontype.Undefined:
		m.Decimal = decimal.Zero
	default:
		return errors.Errorf("cannot decode %s into money", t)
	}
	return nil
}

// ref is a document reference. Hex ids are written as ObjectIDs; anything
// else is kept as a string. Both forms decode to the string id.
type ref string

func (r ref) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if oid, ok := objectID(string(r)); ok {
		return bson.MarshalValue(oid)
	}
	return bson.MarshalValue(string(r))
}

func (r *ref) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.ObjectID:
		v, ok := raw.ObjectIDOK()
		if !ok {
			return errors.New("malformed objectId")
		}
		*r = ref(v.Hex())
	case bsontype.String:
		v, ok := raw.StringValueOK()
		if !ok {
			return errors.New("malformed string")
		}
		*r = ref(v)
	case bsontype.Null, bsontype.Undefined:
		*r = ""
	default:
		return errors.Errorf("cannot decode %s into a reference", t)
	}
	return nil
}
