package attachment

import "context"

// Resolver maps an attachment id to a readable local file path.
type Resolver interface {
	Resolve(ctx context.Context, id int) (string, bool)
}

// Func adapts a function to Resolver.
type Func func(ctx context.Context, id int) (string, bool)

// Resolve implements Resolver.
func (f Func) Resolve(ctx context.Context, id int) (string, bool) {
	return f(ctx, id)
}

// Map resolves ids from a fixed table. Empty paths count as missing.
type Map map[int]string

// Resolve implements Resolver.
func (m Map) Resolve(_ context.Context, id int) (string, bool) {
	path, ok := m[id]
	return path, ok && path != ""
}
