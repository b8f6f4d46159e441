package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

const sampleYAML = `
env: "prod"
http:
  host: "127.0.0.1"
  port: "9090"
auth:
  jwt_secret: "jwt-secret"
  crypto_secret: "crypto-secret"
  access_token_ttl: "30m"
otp:
  ttl: "2m"
  digits: 6
storage:
  sqlite_path: "/tmp/rent.db"
  credentials_driver: "mongo"
  mongo_url: "mongodb://localhost:27017/rentspace"
redis:
  addr: "localhost:6379"
cors:
  allowed_origins: ["https://rentspace.app", "https://admin.rentspace.app"]
rate_limit:
  requests: 10
  window: "30s"
bootstrap_admin:
  email: "root@rentspace.app"
  password: "root-password"
mail:
  host: "smtp.rentspace.app"
  port: 465
  from: "no-reply@rentspace.app"
  tls: "none"
`

const minimalYAML = `
auth:
  jwt_secret: "min-jwt"
  crypto_secret: "min-crypto"
`

const brokenYAML = `
auth:
  jwt_secret: [unclosed
`

func TestLoad_WithExplicitPath_OK(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), "config.yaml", sampleYAML)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	require.Equal(t, "prod", cfg.Env)
	require.Equal(t, "127.0.0.1:9090", cfg.HTTP.Addr())
	require.Equal(t, "jwt-secret", cfg.Auth.JWTSecret)
	require.Equal(t, "crypto-secret", cfg.Auth.CryptoSecret)
	require.Equal(t, 30*time.Minute, cfg.Auth.AccessTokenTTL)
	require.Equal(t, 2*time.Minute, cfg.OTP.TTL)
	require.Equal(t, 6, cfg.OTP.Digits)
	require.Equal(t, DriverMongo, cfg.Storage.CredentialsDriver)
	require.Equal(t, "mongodb://localhost:27017/rentspace", cfg.Storage.MongoURL)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr)
	require.ElementsMatch(t, []string{"https://rentspace.app", "https://admin.rentspace.app"}, cfg.CORS.AllowedOrigins)
	require.Equal(t, 10, cfg.RateLimit.Requests)
	require.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	require.Equal(t, "root@rentspace.app", cfg.BootstrapAdmin.Email)
	require.True(t, cfg.Mail.Enabled())
	require.Equal(t, 465, cfg.Mail.Port)
	require.Equal(t, "no-reply@rentspace.app", cfg.Mail.From)
	require.Equal(t, MailTLSNone, cfg.Mail.TLS)
}

func TestLoad_Defaults(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), "config.yaml", minimalYAML)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	require.Equal(t, "local", cfg.Env)
	require.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	require.Equal(t, time.Hour, cfg.Auth.AccessTokenTTL)
	require.True(t, cfg.Auth.SecureCookies)
	require.Equal(t, 5*time.Minute, cfg.OTP.TTL)
	require.Equal(t, 4, cfg.OTP.Digits)
	require.Equal(t, DriverSQLite, cfg.Storage.CredentialsDriver)
	require.Equal(t, "rentspace.db", cfg.Storage.SQLitePath)
	require.False(t, cfg.Mail.Enabled())
	require.Equal(t, 587, cfg.Mail.Port)
	require.Equal(t, MailTLSStartTLS, cfg.Mail.TLS)
	require.Equal(t, 10*time.Second, cfg.Mail.Timeout)
}

func TestLoad_WithExplicitPath_FileDoesNotExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "stat failed")
}

func TestLoad_WithExplicitPath_BrokenYAML(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), "broken.yaml", brokenYAML)

	_, err := Load(cfgPath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_WithCONFIG_PATH_OK(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), "from_env_path.yaml", minimalYAML)
	t.Setenv("CONFIG_PATH", cfgPath)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "min-jwt", cfg.Auth.JWTSecret)
}

func TestLoad_WithLocalConfigYAML_OK(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, ".", "config.yaml", sampleYAML)
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "prod", cfg.Env)
}

func TestLoad_EnvOverlay(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), "config.yaml", minimalYAML)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("ACCESS_TOKEN_TTL", "5m")

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.Auth.JWTSecret)
	require.Equal(t, 5*time.Minute, cfg.Auth.AccessTokenTTL)
}

func TestLoad_OnlyEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("JWT_SECRET", "env-jwt")
	t.Setenv("CRYPTO_SECRET", "env-crypto")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "env-jwt", cfg.Auth.JWTSecret)
	require.Equal(t, "env-crypto", cfg.Auth.CryptoSecret)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "valid sqlite",
			mutate: func(c *Config) {},
		},
		{
			name:    "mongo without url",
			mutate:  func(c *Config) { c.Storage.CredentialsDriver = DriverMongo },
			wantErr: "mongo_url is required",
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Storage.CredentialsDriver = "postgres" },
			wantErr: "unknown credentials driver",
		},
		{
			name:    "zero access ttl",
			mutate:  func(c *Config) { c.Auth.AccessTokenTTL = 0 },
			wantErr: "access_token_ttl",
		},
		{
			name: "mail host with sender",
			mutate: func(c *Config) {
				c.Mail = MailConfig{Host: "smtp.rentspace.app", Port: 587, From: "no-reply@rentspace.app", TLS: MailTLSStartTLS}
			},
		},
		{
			name:    "mail host without sender",
			mutate:  func(c *Config) { c.Mail = MailConfig{Host: "smtp.rentspace.app", Port: 587} },
			wantErr: "mail.from is required",
		},
		{
			name:    "mail port out of range",
			mutate:  func(c *Config) { c.Mail = MailConfig{Host: "smtp.rentspace.app", Port: 70000, From: "a@b.c"} },
			wantErr: "mail.port",
		},
		{
			name: "unknown mail tls mode",
			mutate: func(c *Config) {
				c.Mail = MailConfig{Host: "smtp.rentspace.app", Port: 465, From: "a@b.c", TLS: "implicit"}
			},
			wantErr: "unknown mail.tls mode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Auth:    AuthConfig{AccessTokenTTL: time.Hour},
				OTP:     OTPConfig{Digits: 4},
				Storage: StorageConfig{CredentialsDriver: DriverSQLite},
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMustLoad_Panics(t *testing.T) {
	require.Panics(t, func() {
		MustLoad(filepath.Join(t.TempDir(), "missing.yaml"))
	})
}
