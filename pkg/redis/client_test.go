package redis

import (
	"testing"

	"github.com/saigonmart/backend/pkg/config"
)

func configRedis(url string) config.RedisConfig {
	return config.RedisConfig{URL: url}
}

func TestKeyNamespacing(t *testing.T) {
	c := &Client{}

	if got := c.OTPKey("+84901234567"); got != "sgm:otp:+84901234567" {
		t.Fatalf("unexpected otp key %q", got)
	}
	if got := c.OTPAttemptsKey("+84901234567"); got != "sgm:otp:+84901234567:attempts" {
		t.Fatalf("unexpected attempts key %q", got)
	}
	if got := c.IdempotencyKey("checkout", "abc"); got != "sgm:idempotency:checkout:abc" {
		t.Fatalf("unexpected idempotency key %q", got)
	}
	if got := c.RateLimitKey("otp:ip:1.2.3.4"); got != "sgm:rate_limit:otp:ip:1.2.3.4" {
		t.Fatalf("unexpected rate limit key %q", got)
	}
	if got := c.AccessSessionKey("sess-1"); got != "sgm:session:access:sess-1" {
		t.Fatalf("unexpected session key %q", got)
	}
}

func TestOptionsFromConfigRequiresURL(t *testing.T) {
	if _, err := optionsFromConfig(configRedis("")); err == nil {
		t.Fatal("expected error for empty url")
	}
	opts, err := optionsFromConfig(configRedis("redis://localhost:6379/2"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.DB != 2 {
		t.Fatalf("expected db 2 from url, got %d", opts.DB)
	}
}
