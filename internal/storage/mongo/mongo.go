// Package mongo stores products and orders as MongoDB documents.
package mongo

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Connect opens a client for uri and verifies the primary is reachable.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connect")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "ping")
	}
	return client, nil
}

// Pinger adapts a client to the readiness check signature.
func Pinger(client *mongo.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}
}

// objectID parses a document id. The boolean is false for anything that is
// not a 24-character hex ObjectID; such ids cannot match a stored document.
func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	return oid, err == nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, errors.Wrapf(err, "convert %s to decimal128", d)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "convert decimal128 %s", v)
	}
	return d, nil
}

func now() time.Time {
	// BSON dates carry millisecond precision.
	return time.Now().UTC().Truncate(time.Millisecond)
}
