package tinyx

// Middleware decorates a store, usually overriding Commit and passing the
// other methods through.
type Middleware interface {
	Wrap(next Store) Store
}

// MiddlewareFunc adapts a function to Middleware.
type MiddlewareFunc func(next Store) Store

func (f MiddlewareFunc) Wrap(next Store) Store { return f(next) }

// CommitFunc has the shape of Store.Commit.
type CommitFunc func(t *Transaction, payload any, path ...any) (Changes, error)

// CommitMiddleware builds a Middleware that only wraps Commit.
func CommitMiddleware(wrap func(next CommitFunc) CommitFunc) Middleware {
	return MiddlewareFunc(func(next Store) Store {
		return &commitStore{Store: next, commit: wrap(next.Commit)}
	})
}

type commitStore struct {
	Store
	commit CommitFunc
}

func (s *commitStore) Commit(t *Transaction, payload any, path ...any) (Changes, error) {
	return s.commit(t, payload, path...)
}

// ApplyMiddleware wraps s so that middleware[0] is outermost and sees every
// commit first.
func ApplyMiddleware(s Store, middleware ...Middleware) Store {
	for i := len(middleware) - 1; i >= 0; i-- {
		s = middleware[i].Wrap(s)
	}
	return s
}
