package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/homeman/marketplace-api/internal/core/domain"
)

const collectionBookings = "bookings"

// BookingRepository implements ports.BookingRepository on the bookings collection.
type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection(collectionBookings)}
}

type mongoBooking struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Client       primitive.ObjectID `bson:"client"`
	Professional primitive.ObjectID `bson:"professional"`
	Status       string             `bson:"status"`
	Rating       *float64           `bson:"rating,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func (mb *mongoBooking) toDomain() *domain.Booking {
	return &domain.Booking{
		ID:             mb.ID.Hex(),
		ClientID:       mb.Client.Hex(),
		ProfessionalID: mb.Professional.Hex(),
		Status:         domain.BookingStatus(mb.Status),
		Rating:         mb.Rating,
		CreatedAt:      mb.CreatedAt.UTC(),
		UpdatedAt:      mb.UpdatedAt.UTC(),
	}
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

// Create inserts a new booking document and returns it with its id.
func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	client, err := primitive.ObjectIDFromHex(b.ClientID)
	if err != nil {
		return nil, domain.NewValidationError("invalid client id")
	}
	pro, err := primitive.ObjectIDFromHex(b.ProfessionalID)
	if err != nil {
		return nil, domain.ErrProfessionalNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	doc := mongoBooking{
		Client:       client,
		Professional: pro,
		Status:       string(b.Status),
		Rating:       b.Rating,
		CreatedAt:    orNow(b.CreatedAt, now),
		UpdatedAt:    orNow(b.UpdatedAt, now),
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}
	doc.ID, _ = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

// FindByID retrieves a booking by its hex id.
func (r *BookingRepository) FindByID(ctx context.Context, id string) (*domain.Booking, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrBookingNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid}, nil)
}

// FindLatestPendingByClient returns the client's most recent pending booking.
func (r *BookingRepository) FindLatestPendingByClient(ctx context.Context, clientID string) (*domain.Booking, error) {
	oid, err := primitive.ObjectIDFromHex(clientID)
	if err != nil {
		return nil, domain.ErrBookingNotFound
	}
	filter := bson.M{"client": oid, "status": string(domain.BookingPending)}
	return r.findOne(ctx, filter, options.FindOne().SetSort(newestFirst))
}

func (r *BookingRepository) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if opts == nil {
		opts = options.FindOne()
	}
	var mb mongoBooking
	if err := r.col.FindOne(ctx, filter, opts).Decode(&mb); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("find booking: %w", err)
	}
	return mb.toDomain(), nil
}

func (r *BookingRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrBookingNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

// CountByProfessionalBetween counts bookings with from <= createdAt < to.
func (r *BookingRepository) CountByProfessionalBetween(ctx context.Context, professionalID string, from, to time.Time) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(professionalID)
	if err != nil {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"professional": oid,
		"createdAt":    bson.M{"$gte": from.UTC(), "$lt": to.UTC()},
	}
	n, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	return n, nil
}

func (r *BookingRepository) ListByClient(ctx context.Context, clientID string) ([]*domain.Booking, error) {
	return r.listBy(ctx, "client", clientID, nil)
}

func (r *BookingRepository) ListByProfessional(ctx context.Context, professionalID string) ([]*domain.Booking, error) {
	return r.listBy(ctx, "professional", professionalID, nil)
}

// ListRatedByProfessional returns every booking of the professional that carries a rating.
func (r *BookingRepository) ListRatedByProfessional(ctx context.Context, professionalID string) ([]*domain.Booking, error) {
	return r.listBy(ctx, "professional", professionalID, bson.M{"rating": bson.M{"$ne": nil}})
}

func (r *BookingRepository) listBy(ctx context.Context, field, id string, extra bson.M) ([]*domain.Booking, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return []*domain.Booking{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{field: oid}
	for k, v := range extra {
		filter[k] = v
	}

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	var docs []mongoBooking
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode bookings: %w", err)
	}

	out := make([]*domain.Booking, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) (*domain.Booking, error) {
	return r.update(ctx, id, bson.M{"status": string(status)})
}

func (r *BookingRepository) SetRating(ctx context.Context, id string, rating float64) (*domain.Booking, error) {
	return r.update(ctx, id, bson.M{"rating": rating})
}

func (r *BookingRepository) update(ctx context.Context, id string, set bson.M) (*domain.Booking, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrBookingNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set["updatedAt"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var mb mongoBooking
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&mb); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("update booking: %w", err)
	}
	return mb.toDomain(), nil
}

// EnsureIndexes creates the indexes behind the quota count, the pending
// lookup and the listings.
func (r *BookingRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "professional", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "client", Value: 1}, {Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
