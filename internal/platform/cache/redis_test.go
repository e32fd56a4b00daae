package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestNewRedisClient(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), srv.Addr(), "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close()

	if err := client.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Fatal(err)
	}
	if got, _ := srv.Get("k"); got != "v" {
		t.Errorf("expected v, got %q", got)
	}
}

func TestNewRedisClientErrors(t *testing.T) {
	if _, err := NewRedisClient(context.Background(), "", "", 0); err == nil {
		t.Error("expected error for empty address")
	}

	srv := miniredis.RunT(t)
	addr := srv.Addr()
	srv.Close()
	if _, err := NewRedisClient(context.Background(), addr, "", 0); err == nil {
		t.Error("expected error when redis is down")
	}
}
