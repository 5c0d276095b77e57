package compiler_test

import (
	"context"
	"sync"
	"testing"

	skema "github.com/reoring/skema"
	"github.com/reoring/skema/compiler"
)

func TestCache_GetInvalidateReset(t *testing.T) {
	c := compiler.NewCache()
	s := typ(skema.TypeInt)

	a, err := c.Get(s)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, err := c.Get(s)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if a != b {
		t.Fatalf("expected the cached instance")
	}
	if c.Len() != 1 {
		t.Fatalf("len=%d", c.Len())
	}

	c.Invalidate(s)
	if c.Len() != 0 {
		t.Fatalf("len after invalidate=%d", c.Len())
	}
	again, err := c.Get(s)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again == a {
		t.Fatalf("expected a fresh compilation after invalidate")
	}

	c.Get(typ(skema.TypeStr))
	c.Reset()
	if c.Len() != 0 {
		t.Fatalf("len after reset=%d", c.Len())
	}
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	c := compiler.NewCache()
	bad := typ(skema.TypeUnion)
	if _, err := c.Get(bad); err == nil {
		t.Fatalf("expected a schema error")
	}
	if c.Len() != 0 {
		t.Fatalf("failed compilation was cached")
	}
	bad.Choices = []skema.Choice{{Schema: typ(skema.TypeInt)}}
	if _, err := c.Get(bad); err != nil {
		t.Fatalf("get after fix: %v", err)
	}
}

func TestCache_UsesCompileOptions(t *testing.T) {
	c := compiler.NewCache(skema.CompileOpt{Strict: true})
	got, err := c.Get(typ(skema.TypeInt))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := got.Validate(context.Background(), "1"); err == nil {
		t.Fatalf("strict cache entry accepted a string")
	}
}

func TestCache_ConcurrentGetSharesOneInstance(t *testing.T) {
	c := compiler.NewCache()
	s := nestedListSchema()
	const n = 32
	out := make([]*compiler.Compiled, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := c.Get(s)
			if err != nil {
				t.Errorf("get: %v", err)
				return
			}
			out[i] = got
		}(i)
	}
	wg.Wait()
	for i := 1; i < n; i++ {
		if out[i] != out[0] {
			t.Fatalf("goroutine %d got a different instance", i)
		}
	}
}
