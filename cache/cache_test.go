package cache

import (
	"testing"
	"time"

	"github.com/agrodata/pestreg/models"
)

func TestKeyNormalization(t *testing.T) {
	base := Key("glyphosate")

	tests := []struct {
		name string
		term string
		same bool
	}{
		{"identical", "glyphosate", true},
		{"upper case", "GLYPHOSATE", true},
		{"surrounding space", "  glyphosate ", true},
		{"different term", "dicamba", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Key(tt.term) == base; got != tt.same {
				t.Errorf("Key(%q) == Key(glyphosate) = %v, want %v", tt.term, got, tt.same)
			}
		})
	}
}

func TestGetSet(t *testing.T) {
	c := New(10)
	resp := &models.SearchResponse{Success: true, Term: "glyphosate", Total: 3}
	key := Key("glyphosate")

	if _, hit := c.Get(key, 60000); hit {
		t.Fatal("hit on empty cache")
	}

	c.Set(key, resp)

	got, hit := c.Get(key, 60000)
	if !hit {
		t.Fatal("miss after Set")
	}
	if got.Total != 3 {
		t.Errorf("Total = %d, want 3", got.Total)
	}

	// maxAge <= 0 disables the lookup entirely.
	if _, hit := c.Get(key, 0); hit {
		t.Error("hit with maxAge=0")
	}
}

func TestGetExpired(t *testing.T) {
	c := New(10)
	key := Key("glyphosate")
	c.Set(key, &models.SearchResponse{Success: true})

	// Backdate the entry past any plausible maxAge.
	c.mu.Lock()
	c.store[key].createdAt = time.Now().Add(-2 * time.Hour)
	c.mu.Unlock()

	if _, hit := c.Get(key, 60000); hit {
		t.Error("hit on entry older than maxAge")
	}
}

func TestSetEvictsAtCapacity(t *testing.T) {
	c := New(2)
	c.Set(Key("a"), &models.SearchResponse{})
	c.Set(Key("b"), &models.SearchResponse{})
	c.Set(Key("c"), &models.SearchResponse{})

	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.store) != 2 {
		t.Errorf("len(store) = %d, want 2", len(c.store))
	}
}
