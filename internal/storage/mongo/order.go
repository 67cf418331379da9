package mongo

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/xenking/storefront-api/internal/domain/order"
)

type itemDoc struct {
	ProductID ref   `bson:"productId"`
	Quantity  int   `bson:"quantity"`
	Price     money `bson:"price"`
}

type orderDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	FirstName  string             `bson:"firstName"`
	LastName   string             `bson:"lastName"`
	Address1   string             `bson:"address1"`
	Address2   string             `bson:"address2,omitempty"`
	City       string             `bson:"city"`
	State      string             `bson:"state"`
	Zip        string             `bson:"zip"`
	Country    string             `bson:"country"`
	Phone      string             `bson:"phone"`
	Email      string             `bson:"email"`
	OrderTotal money              `bson:"orderTotal"`
	Items      []itemDoc          `bson:"items"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

func itemDocs(items []order.Item) []itemDoc {
	docs := make([]itemDoc, 0, len(items))
	for _, it := range items {
		docs = append(docs, itemDoc{ProductID: ref(it.ProductID), Quantity: it.Quantity, Price: money{it.Price}})
	}
	return docs
}

func (d orderDoc) order() order.Order {
	items := make([]order.Item, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, order.Item{ProductID: string(it.ProductID), Quantity: it.Quantity, Price: it.Price.Decimal})
	}
	return order.Order{
		ID:         d.ID.Hex(),
		FirstName:  d.FirstName,
		LastName:   d.LastName,
		Address1:   d.Address1,
		Address2:   d.Address2,
		City:       d.City,
		State:      d.State,
		Zip:        d.Zip,
		Country:    d.Country,
		Phone:      d.Phone,
		Email:      d.Email,
		OrderTotal: d.OrderTotal.Decimal,
		Items:      items,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository on a MongoDB collection. Items
// are embedded in the order document in the order supplied.
type OrderRepository struct {
	coll *mongo.Collection
}

// NewOrderRepository returns an OrderRepository for the named collection.
func NewOrderRepository(db *mongo.Database, collection string) *OrderRepository {
	return &OrderRepository{coll: db.Collection(collection)}
}

func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "find orders")
	}
	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decode orders")
	}

	orders := make([]order.Order, 0, len(docs))
	for _, d := range docs {
		orders = append(orders, d.order())
	}
	return orders, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, order.ErrNotFound
	}
	return r.decodeOne(r.coll.FindOne(ctx, bson.M{"_id": oid}), "get", id)
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	ts := now()
	doc := orderDoc{
		ID:         primitive.NewObjectID(),
		FirstName:  o.FirstName,
		LastName:   o.LastName,
		Address1:   o.Address1,
		Address2:   o.Address2,
		City:       o.City,
		State:      o.State,
		Zip:        o.Zip,
		Country:    o.Country,
		Phone:      o.Phone,
		Email:      o.Email,
		OrderTotal: money{o.OrderTotal},
		Items:      itemDocs(o.Items),
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return errors.Wrap(err, "insert order")
	}

	o.ID = doc.ID.Hex()
	o.CreatedAt = ts
	o.UpdatedAt = ts
	return nil
}

// Update sets the provided fields and returns the document after the write.
func (r *OrderRepository) Update(ctx context.Context, id string, f order.Fields) (*order.Order, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, order.ErrNotFound
	}

	set := bson.D{{Key: "updatedAt", Value: now()}}
	for _, s := range []struct {
		key   string
		value *string
	}{
		{"firstName", f.FirstName},
		{"lastName", f.LastName},
		{"address1", f.Address1},
		{"address2", f.Address2},
		{"city", f.City},
		{"state", f.State},
		{"zip", f.Zip},
		{"country", f.Country},
		{"phone", f.Phone},
		{"email", f.Email},
	} {
		if s.value != nil {
			set = append(set, bson.E{Key: s.key, Value: *s.value})
		}
	}
	if f.OrderTotal != nil {
		set = append(set, bson.E{Key: "orderTotal", Value: money{*f.OrderTotal}})
	}
	if f.Items != nil {
		set = append(set, bson.E{Key: "items", Value: itemDocs(*f.Items)})
	}

	res := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	return r.decodeOne(res, "update", id)
}

func (r *OrderRepository) Delete(ctx context.Context, id string) (*order.Order, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, order.ErrNotFound
	}
	return r.decodeOne(r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}), "delete", id)
}

func (r *OrderRepository) decodeOne(res *mongo.SingleResult, op, id string) (*order.Order, error) {
	var doc orderDoc
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "%s order %s", op, id)
	}
	o := doc.order()
	return &o, nil
}
