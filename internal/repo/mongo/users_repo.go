package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/storefront/internal/domain/cart"
	"github.com/geocoder89/storefront/internal/domain/order"
	"github.com/geocoder89/storefront/internal/domain/user"
	"github.com/geocoder89/storefront/internal/observability"
	"github.com/geocoder89/storefront/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const usersCollection = "users"

// mergeAttempts bounds the inc-or-push loop of AddCartItem when two appends of a new
// item race.
const mergeAttempts = 3

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	Role         string             `bson:"role"`
	UserDatas    user.UserDatas     `bson:"userDatas"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func (d userDoc) toUser() user.User {
	u := user.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         d.Role,
		UserDatas:    d.UserDatas,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	if u.UserDatas.CartList == nil {
		u.UserDatas.CartList = []cart.Item{}
	}
	if u.UserDatas.YourOrders == nil {
		u.UserDatas.YourOrders = []order.Order{}
	}
	return u
}

type UsersRepo struct {
	coll *mongo.Collection
	prom *observability.Prom
	now  func() time.Time
}

func NewUsersRepo(ctx context.Context, db *mongo.Database, prom *observability.Prom) (*UsersRepo, error) {
	coll := db.Collection(usersCollection)

	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_email"),
	})
	if err != nil {
		return nil, fmt.Errorf("create users email index: %w", err)
	}

	return &UsersRepo{coll: coll, prom: prom, now: time.Now}, nil
}

func userObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, user.ErrNotFound
	}
	return oid, nil
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	u.Email = user.NormalizeEmail(u.Email)

	var out user.User
	err := r.prom.ObserveDB("users.create", func() error {
		n, err := r.coll.CountDocuments(ctx, bson.M{"email": u.Email}, options.Count().SetLimit(1))
		if err != nil {
			return err
		}
		if n > 0 {
			return user.ErrEmailTaken
		}

		now := r.now().UTC()
		doc := userDoc{
			ID:           primitive.NewObjectID(),
			Name:         u.Name,
			Email:        u.Email,
			PasswordHash: u.PasswordHash,
			Role:         u.Role,
			UserDatas:    user.EmptyUserDatas(),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if doc.Role == "" {
			doc.Role = user.RoleUser
		}

		if _, err := r.coll.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return user.ErrEmailTaken
			}
			return err
		}
		out = doc.toUser()
		return nil
	})
	if err != nil && !errors.Is(err, user.ErrEmailTaken) {
		return user.User{}, fmt.Errorf("create user: %w", err)
	}
	return out, err
}

func (r *UsersRepo) findOne(ctx context.Context, op string, filter bson.M) (user.User, error) {
	var doc userDoc
	err := r.prom.ObserveDB(op, func() error {
		return r.coll.FindOne(ctx, filter).Decode(&doc)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return doc.toUser(), nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.findOne(ctx, "users.get_by_email", bson.M{"email": user.NormalizeEmail(email)})
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	oid, err := userObjectID(id)
	if err != nil {
		return user.User{}, err
	}
	return r.findOne(ctx, "users.get_by_id", bson.M{"_id": oid})
}

// update runs one FindOneAndUpdate returning the document after the change.
// found is false when the filter matched nothing.
func (r *UsersRepo) update(ctx context.Context, op string, filter bson.M, upd bson.M) (user.User, bool, error) {
	if set, ok := upd["$set"].(bson.M); ok {
		set["updatedAt"] = r.now().UTC()
	} else {
		upd["$set"] = bson.M{"updatedAt": r.now().UTC()}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDoc
	err := r.prom.ObserveDB(op, func() error {
		return r.coll.FindOneAndUpdate(ctx, filter, upd, opts).Decode(&doc)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.User{}, false, nil
		}
		return user.User{}, false, fmt.Errorf("%s: %w", op, err)
	}
	return doc.toUser(), true, nil
}

func (r *UsersRepo) exists(ctx context.Context, oid primitive.ObjectID) (bool, error) {
	var n int64
	err := r.prom.ObserveDB("users.exists", func() error {
		var err error
		n, err = r.coll.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
		return err
	})
	if err != nil {
		return false, fmt.Errorf("users.exists: %w", err)
	}
	return n > 0, nil
}

// missing resolves a filter miss into ErrNotFound when the user is gone, or
// notMatched when the user exists but the element predicate failed.
func (r *UsersRepo) missing(ctx context.Context, oid primitive.ObjectID, notMatched error) error {
	ok, err := r.exists(ctx, oid)
	if err != nil {
		return err
	}
	if !ok {
		return user.ErrNotFound
	}
	return notMatched
}

var errRetryMerge = errors.New("cart item changed during append")

// AddCartItem increments the quantity of an entry with the same id or pushes a new
// entry. Both branches are single-document updates guarded by the element predicate.
func (r *UsersRepo) AddCartItem(ctx context.Context, userID string, item cart.Item) (user.User, error) {
	oid, err := userObjectID(userID)
	if err != nil {
		return user.User{}, err
	}
	item, err = item.Normalize()
	if err != nil {
		return user.User{}, err
	}
	if item.ID == "" {
		item.ID = utils.NewID()
	}

	for attempt := 0; attempt < mergeAttempts; attempt++ {
		u, found, err := r.update(ctx, "users.cart_inc",
			bson.M{"_id": oid, "userDatas.cartList._id": item.ID},
			bson.M{"$inc": bson.M{
				"userDatas.cartList.$.quantity": item.Quantity,
				"userDatas.cartVersion":         1,
			}},
		)
		if err != nil || found {
			return u, err
		}

		u, found, err = r.update(ctx, "users.cart_push",
			bson.M{"_id": oid, "userDatas.cartList._id": bson.M{"$ne": item.ID}},
			bson.M{
				"$push": bson.M{"userDatas.cartList": item},
				"$inc":  bson.M{"userDatas.cartVersion": 1},
			},
		)
		if err != nil || found {
			return u, err
		}

		// neither matched: the user is gone or another append pushed the id first
		if err := r.missing(ctx, oid, errRetryMerge); !errors.Is(err, errRetryMerge) {
			return user.User{}, err
		}
	}
	return user.User{}, fmt.Errorf("add cart item: %w", errRetryMerge)
}

func (r *UsersRepo) SetCartItemQuantity(ctx context.Context, userID, itemID string, quantity int) (user.User, error) {
	if quantity < 1 {
		return user.User{}, cart.ErrInvalidQuantity
	}
	oid, err := userObjectID(userID)
	if err != nil {
		return user.User{}, err
	}

	u, found, err := r.update(ctx, "users.cart_set_quantity",
		bson.M{"_id": oid, "userDatas.cartList._id": itemID},
		bson.M{
			"$set": bson.M{"userDatas.cartList.$.quantity": quantity},
			"$inc": bson.M{"userDatas.cartVersion": 1},
		},
	)
	if err != nil {
		return user.User{}, err
	}
	if !found {
		return user.User{}, r.missing(ctx, oid, cart.ErrItemNotFound)
	}
	return u, nil
}

func (r *UsersRepo) RemoveCartItem(ctx context.Context, userID, itemID string) (user.User, error) {
	oid, err := userObjectID(userID)
	if err != nil {
		return user.User{}, err
	}

	u, found, err := r.update(ctx, "users.cart_pull",
		bson.M{"_id": oid},
		bson.M{
			"$pull": bson.M{"userDatas.cartList": bson.M{"_id": itemID}},
			"$inc":  bson.M{"userDatas.cartVersion": 1},
		},
	)
	if err != nil {
		return user.User{}, err
	}
	if !found {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) ClearCart(ctx context.Context, userID string) (user.User, error) {
	oid, err := userObjectID(userID)
	if err != nil {
		return user.User{}, err
	}

	u, found, err := r.update(ctx, "users.cart_clear",
		bson.M{"_id": oid},
		bson.M{
			"$set": bson.M{"userDatas.cartList": []cart.Item{}},
			"$inc": bson.M{"userDatas.cartVersion": 1},
		},
	)
	if err != nil {
		return user.User{}, err
	}
	if !found {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) AppendOrder(ctx context.Context, userID string, o order.Order) (user.User, error) {
	oid, err := userObjectID(userID)
	if err != nil {
		return user.User{}, err
	}
	if o.ID == "" {
		o.ID = utils.NewID()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = r.now().UTC()
	}
	if o.Fields == nil {
		o.Fields = map[string]any{}
	}

	u, found, err := r.update(ctx, "users.orders_push",
		bson.M{"_id": oid},
		bson.M{"$push": bson.M{"userDatas.yourOrders": o}},
	)
	if err != nil {
		return user.User{}, err
	}
	if !found {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

// Checkout appends o and empties the cart only if the cart is still at cartVersion.
func (r *UsersRepo) Checkout(ctx context.Context, userID string, cartVersion int64, o order.Order) (user.User, error) {
	oid, err := userObjectID(userID)
	if err != nil {
		return user.User{}, err
	}

	filter := bson.M{"_id": oid, "userDatas.cartVersion": cartVersion}
	if cartVersion == 0 {
		// documents written before the counter existed have no field yet
		filter["userDatas.cartVersion"] = bson.M{"$in": bson.A{0, nil}}
	}

	u, found, err := r.update(ctx, "users.checkout", filter, bson.M{
		"$push": bson.M{"userDatas.yourOrders": o},
		"$set":  bson.M{"userDatas.cartList": []cart.Item{}},
		"$inc":  bson.M{"userDatas.cartVersion": 1},
	})
	if err != nil {
		return user.User{}, err
	}
	if !found {
		return user.User{}, r.missing(ctx, oid, order.ErrConcurrentCheckout)
	}
	return u, nil
}
