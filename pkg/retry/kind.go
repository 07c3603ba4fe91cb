package retry

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Kind identifies a class of failures a policy knows how to handle.
// Kinds are matched against the whole error chain.
type Kind struct {
	name  string
	key   any
	match func(error) bool
}

// kind identities; distinct key types keep the constructors from colliding
type (
	typeKey[E error] struct{}
	sentinelKey      struct{ target error }
	nameKey          string
)

// KindOf matches errors whose chain contains a value of type E. The name
// keeps the pointer marker, so KindOf[*T] and KindOf[T] are distinct kinds.
func KindOf[E error]() Kind {
	return Kind{
		name:  strings.TrimPrefix(fmt.Sprintf("%T", (*E)(nil)), "*"),
		key:   typeKey[E]{},
		match: func(err error) bool { return chainHas[E](err) },
	}
}

// KindIs matches errors that are, or wrap, target. Two KindIs kinds are the
// same kind only when their targets are the same error value.
func KindIs(target error) Kind {
	if target == nil {
		return Kind{name: "<nil>"}
	}
	k := Kind{
		name:  target.Error(),
		match: func(err error) bool { return errors.Is(err, target) },
	}
	// identity needs ==; uncomparable targets are never treated as duplicates
	if reflect.TypeOf(target).Comparable() {
		k.key = sentinelKey{target: target}
	}
	return k
}

// KindFunc matches errors for which match returns true. The caller-chosen
// name is the kind's identity.
func KindFunc(name string, match func(error) bool) Kind {
	return Kind{name: name, key: nameKey(name), match: match}
}

// String returns the kind name
func (k Kind) String() string {
	return k.name
}

// Matches reports whether err belongs to this kind
func (k Kind) Matches(err error) bool {
	if err == nil || k.match == nil {
		return false
	}
	return k.match(err)
}

// sameAs reports whether k and other identify the same kind
func (k Kind) sameAs(other Kind) bool {
	return k.key != nil && k.key == other.key
}

// chainHas walks the Unwrap chain, including joined errors, looking for E
func chainHas[E error](err error) bool {
	for err != nil {
		if _, ok := err.(E); ok {
			return true
		}
		switch x := err.(type) {
		case interface{ Unwrap() error }:
			err = x.Unwrap()
		case interface{ Unwrap() []error }:
			for _, inner := range x.Unwrap() {
				if chainHas[E](inner) {
					return true
				}
			}
			return false
		default:
			return false
		}
	}
	return false
}
