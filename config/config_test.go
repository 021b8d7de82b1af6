package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "STORE_DRIVER", "DATABASE_URL", "FIREBASE_PROJECT_ID",
		"DELIVERY_BACKEND", "SUGGEST_API_KEY", "GEMINI_API_KEY", "KAFKA_BROKERS",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Server.Port != "8080" {
		t.Errorf("expected port 8080, got %q", cfg.Server.Port)
	}
	if cfg.Driver() != "sqlite" {
		t.Errorf("expected sqlite driver, got %q", cfg.Driver())
	}
	if cfg.Delivery.Backend != "log" {
		t.Errorf("expected log backend, got %q", cfg.Delivery.Backend)
	}
	if cfg.Server.MaxUploadBytes != 16<<20 {
		t.Errorf("expected 16 MiB upload limit, got %d", cfg.Server.MaxUploadBytes)
	}
	if cfg.Kafka.Brokers != nil {
		t.Errorf("expected no brokers, got %v", cfg.Kafka.Brokers)
	}
}

func TestDriver_Inference(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want string
	}{
		{"explicit", Config{Store: StoreConfig{Driver: "firestore", DatabaseURL: "postgres://x"}}, "firestore"},
		{"database url", Config{Store: StoreConfig{DatabaseURL: "postgres://x"}}, "postgres"},
		{"firebase project", Config{Firebase: FirebaseConfig{ProjectID: "demo"}}, "firestore"},
		{"fallback", Config{}, "sqlite"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.cfg.Driver(); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestLoad_ParsesTypedValues(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,,")
	t.Setenv("DELIVERY_ATTEMPT_TIMEOUT", "3s")
	t.Setenv("DELIVERY_WORKERS", "not-a-number")
	t.Setenv("SUGGEST_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "gm-key")

	cfg := Load()
	if want := []string{"kafka-1:9092", "kafka-2:9092"}; !reflect.DeepEqual(cfg.Kafka.Brokers, want) {
		t.Errorf("expected brokers %v, got %v", want, cfg.Kafka.Brokers)
	}
	if cfg.Delivery.AttemptTimeout != 3*time.Second {
		t.Errorf("expected 3s timeout, got %v", cfg.Delivery.AttemptTimeout)
	}
	if cfg.Delivery.Workers != 1 {
		t.Errorf("invalid int should fall back to default, got %d", cfg.Delivery.Workers)
	}
	if cfg.Suggest.APIKey != "gm-key" {
		t.Errorf("expected GEMINI_API_KEY fallback, got %q", cfg.Suggest.APIKey)
	}
}
