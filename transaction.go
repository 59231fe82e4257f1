package tinyx

import "fmt"

// Transaction is a named factory of mutations. The name is what middleware
// such as Logger reports; identity is the pointer, so package-level
// transactions can be recognized with ==.
type Transaction struct {
	Name string
	Fn   func(payload any) Mutation
}

// NewTransaction names fn.
func NewTransaction(name string, fn func(payload any) Mutation) *Transaction {
	return &Transaction{Name: name, Fn: fn}
}

func (t *Transaction) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.Name
}

func (t *Transaction) mutation(payload any) (Mutation, error) {
	if t == nil || t.Fn == nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransaction, t)
	}
	return t.Fn(payload), nil
}
