// Package sessionopt provides a generic functional-options builder used to
// configure a Session at construction time without forcing every caller
// through envconfig.LoadSessionDefaults or a hand-built SessionDefaults
// literal.
package sessionopt

// Option mutates a configuration value of type T in place. Apply folds a
// sequence of Options over a pointer to that value.
type Option[T any] func(cfg *T)

// Apply runs each opt against cfg in order, letting later options override
// earlier ones.
func Apply[T any](cfg *T, opts ...Option[T]) {
	for _, opt := range opts {
		opt(cfg)
	}
}
