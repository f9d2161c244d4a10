package repository

// Option applies a configuration option to the SQLStore.
type Option func(*SQLStore)

// WithMaxOpenConns caps the connection pool. SQLite in-memory databases need 1.
func WithMaxOpenConns(n int) Option {
	return func(s *SQLStore) {
		if n > 0 {
			s.maxOpenConns = n
		}
	}
}

// WithoutSchema skips CreateSchema on open, for databases managed elsewhere.
func WithoutSchema() Option {
	return func(s *SQLStore) {
		s.createSchema = false
	}
}
