package mongo

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/xenking/storefront-api/internal/domain/product"
)

type productDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Price       money              `bson:"price"`
	Description string             `bson:"description,omitempty"`
	ImageURL    string             `bson:"imageUrl"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d productDoc) product() product.Product {
	return product.Product{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Price:       d.Price.Decimal,
		Description: d.Description,
		ImageURL:    d.ImageURL,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository on a MongoDB collection.
type ProductRepository struct {
	coll *mongo.Collection
}

// NewProductRepository returns a ProductRepository for the named collection.
func NewProductRepository(db *mongo.Database, collection string) *ProductRepository {
	return &ProductRepository{coll: db.Collection(collection)}
}

func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "find products")
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decode products")
	}

	products := make([]product.Product, 0, len(docs))
	for _, d := range docs {
		products = append(products, d.product())
	}
	return products, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, product.ErrNotFound
	}
	return r.decodeOne(r.coll.FindOne(ctx, bson.M{"_id": oid}), "get", id)
}

// Exists reports whether a product with id is stored. Ids that are not
// ObjectIDs never exist.
func (r *ProductRepository) Exists(ctx context.Context, id string) (bool, error) {
	oid, ok := objectID(id)
	if !ok {
		return false, nil
	}
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return false, errors.Wrapf(err, "count product %s", id)
	}
	return n > 0, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	ts := now()
	doc := productDoc{
		ID:          primitive.NewObjectID(),
		Name:        p.Name,
		Price:       money{p.Price},
		Description: p.Description,
		ImageURL:    p.ImageURL,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return errors.Wrap(err, "insert product")
	}

	p.ID = doc.ID.Hex()
	p.CreatedAt = ts
	p.UpdatedAt = ts
	return nil
}

// Update sets the provided fields and returns the document after the write.
func (r *ProductRepository) Update(ctx context.Context, id string, f product.Fields) (*product.Product, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, product.ErrNotFound
	}

	set := bson.D{{Key: "updatedAt", Value: now()}}
	if f.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *f.Name})
	}
	if f.Price != nil {
		set = append(set, bson.E{Key: "price", Value: money{*f.Price}})
	}
	if f.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *f.Description})
	}
	if f.ImageURL != nil {
		set = append(set, bson.E{Key: "imageUrl", Value: *f.ImageURL})
	}

	res := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	return r.decodeOne(res, "update", id)
}

func (r *ProductRepository) Delete(ctx context.Context, id string) (*product.Product, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, product.ErrNotFound
	}
	return r.decodeOne(r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}), "delete", id)
}

func (r *ProductRepository) decodeOne(res *mongo.SingleResult, op, id string) (*product.Product, error) {
	var doc productDoc
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, product.ErrNotFound
		}
		return nil, errors.Wrapf(err, "%s product %s", op, id)
	}
	p := doc.product()
	return &p, nil
}
