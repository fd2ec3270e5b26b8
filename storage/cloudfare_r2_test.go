package storage

import (
	"context"
	"errors"
	"testing"
)

func TestPublicURL(t *testing.T) {
	cases := []struct {
		base string
		key  string
		want string
	}{
		{"https://cdn.example.com", "results/spring-open/a.json", "https://cdn.example.com/results/spring-open/a.json"},
		{"https://cdn.example.com/", "/results/a.json", "https://cdn.example.com/results/a.json"},
		{"https://cdn.example.com/bucket", "results/with space.json", "https://cdn.example.com/bucket/results/with%20space.json"},
		{"", "results/a.json", ""},
		{"https://cdn.example.com", "", ""},
	}
	for _, tc := range cases {
		if got := PublicURL(tc.base, tc.key); got != tc.want {
			t.Fatalf("PublicURL(%q, %q): expected %q, got %q", tc.base, tc.key, tc.want, got)
		}
	}
}

func TestNewCloudflareR2UploaderRequiresAllFields(t *testing.T) {
	_, err := NewCloudflareR2Uploader(context.Background(), CloudflareR2UploaderConfig{AccountID: "acc", BucketName: "b"})
	if !errors.Is(err, ErrInvalidR2Config) {
		t.Fatalf("expected ErrInvalidR2Config, got %v", err)
	}
}
