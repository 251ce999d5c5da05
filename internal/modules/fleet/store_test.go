package fleet

import (
	"context"
	"testing"

	"citycab/internal/testutil"
)

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := testutil.Redis(t, vehiclesKey)
	store := NewStore(client)

	if got, err := store.Load(ctx); err != nil || len(got) != 0 {
		t.Fatalf("empty load: %+v %v", got, err)
	}
	in := []Vehicle{
		{ID: "a", Name: "A", Location: "Saket", Class: ClassVan, Available: true},
		{ID: "b", Name: "B", Location: "INA", Class: ClassSedan, Available: false},
	}
	if err := store.Save(ctx, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, in[:1]); err != nil {
		t.Fatalf("second save: %v", err)
	}
	got, err := store.Load(ctx)
	if err != nil || len(got) != 1 || got[0] != in[0] {
		t.Fatalf("load after replace: %+v %v", got, err)
	}
}
