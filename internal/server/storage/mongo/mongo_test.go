package mongo

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/iudanet/rentspace/internal/models"
	"github.com/iudanet/rentspace/internal/server/storage"
)

const testTimeout = 10 * time.Second

// TestMain поднимает MongoDB в контейнере один раз на пакет.
// Без GO_TEST_INTEGRATION контейнер не запускается и тесты пропускаются.
func TestMain(m *testing.M) {
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		os.Exit(m.Run())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	mongoC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7.0",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForLog("Waiting for connections").WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start mongo testcontainer: %v\n", err)
		os.Exit(1)
	}

	host, err := mongoC.Host(ctx)
	if err != nil {
		_ = mongoC.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "failed to get container host: %v\n", err)
		os.Exit(1)
	}

	port, err := mongoC.MappedPort(ctx, "27017/tcp")
	if err != nil {
		_ = mongoC.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "failed to get mapped port: %v\n", err)
		os.Exit(1)
	}

	_ = os.Setenv("MONGO_TEST_URL", fmt.Sprintf("mongodb://%s:%s", host, port.Port()))

	code := m.Run()

	_ = mongoC.Terminate(context.Background())
	os.Exit(code)
}

// mustNewMongo подключается к отдельной базе с уникальным именем и удаляет ее после теста
func mustNewMongo(t *testing.T) *Mongo {
	t.Helper()

	base := os.Getenv("MONGO_TEST_URL")
	if base == "" {
		t.Skip("MONGO_TEST_URL is not set; run with GO_TEST_INTEGRATION=1")
	}

	dbName := "rentspace_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	uri := strings.TrimRight(base, "/") + "/" + dbName

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	m, err := New(ctx, uri)
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
		defer cancel()
		_ = m.db.Drop(ctx)
		_ = m.Close(ctx)
	})

	return m
}

func newPrincipal() *models.Principal {
	id := uuid.NewString()
	return &models.Principal{
		ID:        id,
		Name:      "Test " + id[:8],
		Email:     "Test_" + id[:8] + "@Example.com",
		Password:  "sealed-password",
		Verified:  true,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
}

func TestDatabaseFromURI(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"mongodb://localhost:27017", defaultDBName},
		{"mongodb://localhost:27017/", defaultDBName},
		{"mongodb://localhost:27017/market", "market"},
		{"mongodb://u:p@localhost:27017/market?authSource=admin", "market"},
		{"::not a uri", defaultDBName},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			assert.Equal(t, tt.want, databaseFromURI(tt.uri))
		})
	}
}

func TestCollectionFor(t *testing.T) {
	assert.Equal(t, usersCollection, collectionFor(models.KindUser))
	assert.Equal(t, adminsCollection, collectionFor(models.KindAdmin))
}

func TestNew_EmptyURI(t *testing.T) {
	_, err := New(context.Background(), "")
	require.Error(t, err)
}

func TestCredentialStore_CreateAndFind(t *testing.T) {
	m := mustNewMongo(t)
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	users := m.Credentials(models.KindUser)
	admins := m.Credentials(models.KindAdmin)
	p := newPrincipal()
	require.NoError(t, users.CreatePrincipal(ctx, p))

	got, err := users.FindPrincipal(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.KindUser, got.Kind)
	assert.Equal(t, strings.ToLower(p.Email), got.Email)
	assert.Empty(t, got.RefreshTokens)

	got, err = users.GetPrincipalByEmail(ctx, strings.ToUpper(p.Email))
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	dup := newPrincipal()
	dup.Email = p.Email
	assert.ErrorIs(t, users.CreatePrincipal(ctx, dup), storage.ErrAlreadyExists)

	_, err = admins.FindPrincipal(ctx, p.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	dup.Kind = models.KindAdmin
	require.NoError(t, admins.CreatePrincipal(ctx, dup), "коллекции администраторов и пользователей независимы")
}

func TestCredentialStore_Update(t *testing.T) {
	m := mustNewMongo(t)
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	users := m.Credentials(models.KindUser)
	p := newPrincipal()
	require.NoError(t, users.CreatePrincipal(ctx, p))
	require.NoError(t, users.AddRefreshToken(ctx, p.ID, "rt-1"))

	p.Name = "Renamed"
	p.Active = false
	p.RefreshTokens = nil
	require.NoError(t, users.UpdatePrincipal(ctx, p))

	got, err := users.FindPrincipal(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.False(t, got.Active)
	assert.Equal(t, []string{"rt-1"}, got.RefreshTokens)

	assert.ErrorIs(t, users.UpdatePrincipal(ctx, &models.Principal{ID: "missing"}), storage.ErrNotFound)
}

func TestCredentialStore_RefreshTokens(t *testing.T) {
	m := mustNewMongo(t)
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	users := m.Credentials(models.KindUser)
	p := newPrincipal()
	require.NoError(t, users.CreatePrincipal(ctx, p))

	require.NoError(t, users.AddRefreshToken(ctx, p.ID, "rt-1"))
	require.NoError(t, users.AddRefreshToken(ctx, p.ID, "rt-2"))

	owner, err := users.FindPrincipalByRefreshToken(ctx, "rt-2")
	require.NoError(t, err)
	assert.Equal(t, p.ID, owner.ID)
	assert.Equal(t, []string{"rt-1", "rt-2"}, owner.RefreshTokens)

	n, err := users.CountRefreshTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, users.RemoveRefreshToken(ctx, p.ID, "rt-1"))
	assert.ErrorIs(t, users.RemoveRefreshToken(ctx, p.ID, "rt-1"), storage.ErrTokenNotFound)

	_, err = users.FindPrincipalByRefreshToken(ctx, "rt-1")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.ErrorIs(t, users.AddRefreshToken(ctx, "missing", "rt-x"), storage.ErrNotFound)
}

func TestCredentialStore_ConcurrentAdd(t *testing.T) {
	m := mustNewMongo(t)
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	users := m.Credentials(models.KindUser)
	p := newPrincipal()
	require.NoError(t, users.CreatePrincipal(ctx, p))

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, users.AddRefreshToken(ctx, p.ID, fmt.Sprintf("rt-%d", i)))
		}(i)
	}
	wg.Wait()

	got, err := users.FindPrincipal(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, got.RefreshTokens, workers)
}
