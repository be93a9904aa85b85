package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer client.Close()

	if err := Ping(client)(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestConnect_Password(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.RequireAuth("s3cret")

	if _, err := Connect(context.Background(), Config{Addr: mr.Addr(), Timeout: time.Second}); err == nil {
		t.Fatal("expected error without password")
	}
	client, err := Connect(context.Background(), Config{Addr: mr.Addr(), Password: "s3cret"})
	if err != nil {
		t.Fatalf("Connect with password: %v", err)
	}
	client.Close()
}

func TestConfig_DefaultTimeout(t *testing.T) {
	opts := Config{Addr: "localhost:6379"}.options()
	if opts.DialTimeout != defaultTimeout || opts.ReadTimeout != defaultTimeout {
		t.Errorf("timeouts = %v/%v, want %v", opts.DialTimeout, opts.ReadTimeout, defaultTimeout)
	}
}
