// Package mongo хранит учетные записи в MongoDB (credentials_driver: mongo).
// Набор refresh токенов лежит массивом прямо в документе учетной записи
// и меняется атомарными $push / $pull.
package mongo

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/iudanet/rentspace/internal/models"
)

const (
	usersCollection  = "users"
	adminsCollection = "admins"
	defaultDBName    = "rentspace"
)

// Mongo тонкий адаптер над подключением и коллекциями учетных записей
type Mongo struct {
	client *mongodriver.Client
	db     *mongodriver.Database
}

// New подключается к MongoDB, проверяет соединение и создает индексы
func New(ctx context.Context, uri string) (*Mongo, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo: empty uri")
	}

	cli, err := mongodriver.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	m := &Mongo{
		client: cli,
		db:     cli.Database(databaseFromURI(uri)),
	}

	if err := m.ensureIndexes(ctx); err != nil {
		_ = m.Close(ctx)
		return nil, err
	}

	return m, nil
}

// Close закрывает подключение
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// Ping проверяет доступность primary (readiness)
func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

// Credentials возвращает хранилище учетных записей указанного вида
func (m *Mongo) Credentials(kind models.PrincipalKind) *CredentialStore {
	return &CredentialStore{
		coll: m.db.Collection(collectionFor(kind)),
		kind: kind,
	}
}

func collectionFor(kind models.PrincipalKind) string {
	if kind == models.KindAdmin {
		return adminsCollection
	}
	return usersCollection
}

// ensureIndexes создает индексы для обеих коллекций:
// - уникальный email;
// - multikey индекс по refreshTokens для поиска владельца токена.
func (m *Mongo) ensureIndexes(ctx context.Context) error {
	indexes := []mongodriver.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "refreshTokens", Value: 1}},
			Options: options.Index().SetName("refresh_tokens"),
		},
	}

	for _, name := range []string{usersCollection, adminsCollection} {
		if _, err := m.db.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("mongo ensure indexes on %s: %w", name, err)
		}
	}

	return nil
}

// databaseFromURI извлекает имя базы из пути URI или возвращает значение по умолчанию
func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err == nil {
		if name := strings.Trim(u.Path, "/"); name != "" {
			return name
		}
	}
	return defaultDBName
}
