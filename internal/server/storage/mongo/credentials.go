package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iudanet/rentspace/internal/models"
	"github.com/iudanet/rentspace/internal/server/storage"
)

// principalDoc документ учетной записи
type principalDoc struct {
	CreatedAt      time.Time `bson:"createdAt"`
	ID             string    `bson:"_id"`
	Name           string    `bson:"name"`
	Email          string    `bson:"email"`
	Password       string    `bson:"password"`
	RefreshTokens  []string  `bson:"refreshTokens"`
	Verified       bool      `bson:"verified"`
	Active         bool      `bson:"active"`
	ForgetPassword bool      `bson:"forgetPassword"`
}

func (d *principalDoc) toModel(kind models.PrincipalKind) *models.Principal {
	tokens := d.RefreshTokens
	if tokens == nil {
		tokens = []string{}
	}
	return &models.Principal{
		ID:             d.ID,
		Kind:           kind,
		Name:           d.Name,
		Email:          d.Email,
		Password:       d.Password,
		RefreshTokens:  tokens,
		Verified:       d.Verified,
		Active:         d.Active,
		ForgetPassword: d.ForgetPassword,
		CreatedAt:      d.CreatedAt,
	}
}

// CredentialStore учетные записи одного вида в своей коллекции
type CredentialStore struct {
	coll *mongodriver.Collection
	kind models.PrincipalKind
}

var _ storage.CredentialStore = (*CredentialStore)(nil)

// CreatePrincipal stores a new principal
func (c *CredentialStore) CreatePrincipal(ctx context.Context, p *models.Principal) error {
	doc := principalDoc{
		ID:             p.ID,
		Name:           p.Name,
		Email:          strings.ToLower(p.Email),
		Password:       p.Password,
		RefreshTokens:  []string{},
		Verified:       p.Verified,
		Active:         p.Active,
		ForgetPassword: p.ForgetPassword,
		CreatedAt:      p.CreatedAt.UTC(),
	}

	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("mongo insert %s: %w", c.kind, err)
	}

	return nil
}

// FindPrincipal returns the principal by id
func (c *CredentialStore) FindPrincipal(ctx context.Context, id string) (*models.Principal, error) {
	return c.findOne(ctx, bson.M{"_id": id})
}

// GetPrincipalByEmail returns the principal by email
func (c *CredentialStore) GetPrincipalByEmail(ctx context.Context, email string) (*models.Principal, error) {
	return c.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

// FindPrincipalByRefreshToken returns the principal whose refreshTokens array contains token
func (c *CredentialStore) FindPrincipalByRefreshToken(ctx context.Context, token string) (*models.Principal, error) {
	return c.findOne(ctx, bson.M{"refreshTokens": token})
}

// UpdatePrincipal overwrites name, password and status flags
func (c *CredentialStore) UpdatePrincipal(ctx context.Context, p *models.Principal) error {
	update := bson.M{"$set": bson.M{
		"name":           p.Name,
		"password":       p.Password,
		"verified":       p.Verified,
		"active":         p.Active,
		"forgetPassword": p.ForgetPassword,
	}}

	res, err := c.coll.UpdateOne(ctx, bson.M{"_id": p.ID}, update)
	if err != nil {
		return fmt.Errorf("mongo update %s: %w", c.kind, err)
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// AddRefreshToken appends token with $push
func (c *CredentialStore) AddRefreshToken(ctx context.Context, principalID, token string) error {
	res, err := c.coll.UpdateOne(ctx,
		bson.M{"_id": principalID},
		bson.M{"$push": bson.M{"refreshTokens": token}},
	)
	if err != nil {
		return fmt.Errorf("mongo push refresh token: %w", err)
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// RemoveRefreshToken removes token with $pull.
// Фильтр требует наличия токена, поэтому ModifiedCount=0 однозначно значит, что его не было.
func (c *CredentialStore) RemoveRefreshToken(ctx context.Context, principalID, token string) error {
	res, err := c.coll.UpdateOne(ctx,
		bson.M{"_id": principalID, "refreshTokens": token},
		bson.M{"$pull": bson.M{"refreshTokens": token}},
	)
	if err != nil {
		return fmt.Errorf("mongo pull refresh token: %w", err)
	}
	if res.MatchedCount == 0 {
		return storage.ErrTokenNotFound
	}

	return nil
}

// CountRefreshTokens returns the total number of refresh tokens in the collection
func (c *CredentialStore) CountRefreshTokens(ctx context.Context) (int, error) {
	pipeline := mongodriver.Pipeline{
		{{Key: "$project", Value: bson.M{"n": bson.M{"$size": bson.M{"$ifNull": bson.A{"$refreshTokens", bson.A{}}}}}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$n"}}}},
	}

	cur, err := c.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("mongo count refresh tokens: %w", err)
	}
	defer func() {
		_ = cur.Close(ctx)
	}()

	var out []struct {
		Total int `bson:"total"`
	}
	if err := cur.All(ctx, &out); err != nil {
		return 0, fmt.Errorf("mongo decode refresh token count: %w", err)
	}
	if len(out) == 0 {
		return 0, nil
	}

	return out[0].Total, nil
}

func (c *CredentialStore) findOne(ctx context.Context, filter bson.M) (*models.Principal, error) {
	var doc principalDoc

	err := c.coll.FindOne(ctx, filter, options.FindOne()).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("mongo find %s: %w", c.kind, err)
	}

	return doc.toModel(c.kind), nil
}
