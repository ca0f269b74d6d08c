package userstore

import (
	"context"
	"errors"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/qprep/qprep/internal/app/system/normalize"
	"github.com/qprep/qprep/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicate is returned when a username, email, or matric number
	// already belongs to another account.
	ErrDuplicate = errors.New("an account with this username, email, or matric number already exists")
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	errBadRole  = errors.New(`role must be "student"|"admin"|"moderator"|"super_admin"`)
)

// listProjection keeps password hashes out of list and lookup responses.
var listProjection = bson.M{"password_hash": 0}

// Create inserts a new user after normalizing and validating fields.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	u.Username = strings.TrimSpace(u.Username)
	u.UsernameCI = text.Fold(u.Username)
	u.Email = normalize.Email(u.Email)
	u.EmailCI = text.Fold(u.Email)
	u.MatricNumber = strings.TrimSpace(u.MatricNumber)
	u.MatricNumberCI = text.Fold(u.MatricNumber)
	u.Role = normalize.Role(u.Role)
	if u.Status == "" {
		u.Status = "active"
	}

	switch u.Role {
	case "student", "admin", "moderator", "super_admin":
	default:
		return models.User{}, errBadRole
	}

	if u.Username == "" {
		return models.User{}, errors.New("username is required")
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicate
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByIdentifier looks up a user by username, email, or matric number,
// case-insensitively. Login accepts any of the three.
func (s *Store) GetByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	folded := text.Fold(strings.TrimSpace(identifier))
	if folded == "" {
		return nil, ErrNotFound
	}

	var u models.User
	err := s.c.FindOne(ctx, bson.M{"$or": []bson.M{
		{"username_ci": folded},
		{"email_ci": folded},
		{"matric_number_ci": folded},
	}}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// List returns all users, newest first, without password hashes.
func (s *Store) List(ctx context.Context) ([]models.User, error) {
	opts := options.Find().
		SetProjection(listProjection).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateRole changes a user's role. Unknown roles are rejected before
// touching the database.
func (s *Store) UpdateRole(ctx context.Context, id primitive.ObjectID, role string) error {
	role = normalize.Role(role)
	switch role {
	case "student", "admin", "moderator", "super_admin":
	default:
		return errBadRole
	}

	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"role":       role,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a user by ID.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the total number of users.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// CountByRole returns the number of users with the given role.
func (s *Store) CountByRole(ctx context.Context, role string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"role": normalize.Role(role)})
}
