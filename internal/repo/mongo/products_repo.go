package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/storefront/internal/domain/product"
	"github.com/geocoder89/storefront/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const productsCollection = "products"

type productDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Category    string             `bson:"category"`
	Image       string             `bson:"image"`
	Price       float64            `bson:"price"`
	InStock     float64            `bson:"inStock"`
	Rating      float64            `bson:"rating"`
	InCart      bool               `bson:"inCart"`
	Quantity    float64            `bson:"quantity"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func newProductDoc(p product.Product, now time.Time) productDoc {
	return productDoc{
		ID:          primitive.NewObjectID(),
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Image:       p.Image,
		Price:       p.Price,
		InStock:     p.InStock,
		Rating:      p.Rating,
		InCart:      p.InCart,
		Quantity:    p.Quantity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (d productDoc) toProduct() product.Product {
	return product.Product{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		Image:       d.Image,
		Price:       d.Price,
		InStock:     d.InStock,
		Rating:      d.Rating,
		InCart:      d.InCart,
		Quantity:    d.Quantity,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type ProductsRepo struct {
	coll *mongo.Collection
	prom *observability.Prom
	now  func() time.Time
}

func NewProductsRepo(db *mongo.Database, prom *observability.Prom) *ProductsRepo {
	return &ProductsRepo{coll: db.Collection(productsCollection), prom: prom, now: time.Now}
}

func productObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, product.ErrNotFound
	}
	return oid, nil
}

func (r *ProductsRepo) Create(ctx context.Context, p product.Product) (product.Product, error) {
	listing := bson.M{
		"title":       p.Title,
		"image":       p.Image,
		"inStock":     p.InStock,
		"category":    p.Category,
		"price":       p.Price,
		"description": p.Description,
		"rating":      p.Rating,
	}

	doc := newProductDoc(p, r.now().UTC())
	err := r.prom.ObserveDB("products.create", func() error {
		n, err := r.coll.CountDocuments(ctx, listing, options.Count().SetLimit(1))
		if err != nil {
			return err
		}
		if n > 0 {
			return product.ErrAlreadyExists
		}
		_, err = r.coll.InsertOne(ctx, doc)
		return err
	})
	if err != nil {
		if errors.Is(err, product.ErrAlreadyExists) {
			return product.Product{}, err
		}
		return product.Product{}, fmt.Errorf("create product: %w", err)
	}
	return doc.toProduct(), nil
}

func (r *ProductsRepo) InsertMany(ctx context.Context, ps []product.Product) ([]product.Product, error) {
	now := r.now().UTC()
	docs := make([]any, len(ps))
	out := make([]product.Product, len(ps))
	for i, p := range ps {
		d := newProductDoc(p, now)
		docs[i] = d
		out[i] = d.toProduct()
	}

	err := r.prom.ObserveDB("products.insert_many", func() error {
		_, err := r.coll.InsertMany(ctx, docs)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("insert products: %w", err)
	}
	return out, nil
}

func updateSet(req product.UpdateProductRequest) bson.M {
	set := bson.M{}
	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Category != nil {
		set["category"] = *req.Category
	}
	if req.Image != nil {
		set["image"] = *req.Image
	}
	if req.Price != nil {
		set["price"] = *req.Price
	}
	if req.InStock != nil {
		set["inStock"] = *req.InStock
	}
	if req.Rating != nil {
		set["rating"] = *req.Rating
	}
	if req.InCart != nil {
		set["inCart"] = *req.InCart
	}
	return set
}

func (r *ProductsRepo) Update(ctx context.Context, id string, req product.UpdateProductRequest) (product.Product, error) {
	oid, err := productObjectID(id)
	if err != nil {
		return product.Product{}, err
	}

	set := updateSet(req)
	set["updatedAt"] = r.now().UTC()

	var doc productDoc
	err = r.prom.ObserveDB("products.update", func() error {
		return r.coll.FindOneAndUpdate(ctx,
			bson.M{"_id": oid},
			bson.M{"$set": set},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&doc)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return product.Product{}, product.ErrNotFound
		}
		return product.Product{}, fmt.Errorf("update product: %w", err)
	}
	return doc.toProduct(), nil
}

func (r *ProductsRepo) Delete(ctx context.Context, id string) error {
	oid, err := productObjectID(id)
	if err != nil {
		return err
	}

	var res *mongo.DeleteResult
	err = r.prom.ObserveDB("products.delete", func() error {
		var err error
		res, err = r.coll.DeleteOne(ctx, bson.M{"_id": oid})
		return err
	})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return product.ErrNotFound
	}
	return nil
}

func (r *ProductsRepo) DeleteAll(ctx context.Context) (int64, error) {
	var res *mongo.DeleteResult
	err := r.prom.ObserveDB("products.delete_all", func() error {
		var err error
		res, err = r.coll.DeleteMany(ctx, bson.M{})
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("delete products: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *ProductsRepo) List(ctx context.Context) ([]product.Product, error) {
	var docs []productDoc
	err := r.prom.ObserveDB("products.list", func() error {
		cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
		if err != nil {
			return err
		}
		return cur.All(ctx, &docs)
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	out := make([]product.Product, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toProduct())
	}
	return out, nil
}

func (r *ProductsRepo) GetByID(ctx context.Context, id string) (product.Product, error) {
	oid, err := productObjectID(id)
	if err != nil {
		return product.Product{}, err
	}

	var doc productDoc
	err = r.prom.ObserveDB("products.get_by_id", func() error {
		return r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return product.Product{}, product.ErrNotFound
		}
		return product.Product{}, fmt.Errorf("get product: %w", err)
	}
	return doc.toProduct(), nil
}
