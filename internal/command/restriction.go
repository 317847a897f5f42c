package command

// Restriction decides whether a message may trigger the commands that
// reference it. Restrictions are registered once with a handler and looked
// up by name.
type Restriction[M any] interface {
	// Name identifies the restriction for lookup from Command.Restrictions.
	Name() string

	// Allowed reports whether the triggering message passes.
	Allowed(message M) bool
}

type restriction[M any] struct {
	name    string
	allowed func(message M) bool
}

func (r restriction[M]) Name() string { return r.name }

func (r restriction[M]) Allowed(message M) bool { return r.allowed(message) }

// NewRestriction builds a restriction from a predicate.
func NewRestriction[M any](name string, allowed func(message M) bool) Restriction[M] {
	return restriction[M]{name: name, allowed: allowed}
}

// AllOf combines restrictions so that every one must allow the message.
// With no children it allows everything.
func AllOf[M any](name string, restrictions ...Restriction[M]) Restriction[M] {
	return restriction[M]{name: name, allowed: func(message M) bool {
		for _, r := range restrictions {
			if !r.Allowed(message) {
				return false
			}
		}
		return true
	}}
}

// AnyOf combines restrictions so that at least one must allow the message.
// With no children it denies everything.
func AnyOf[M any](name string, restrictions ...Restriction[M]) Restriction[M] {
	return restriction[M]{name: name, allowed: func(message M) bool {
		for _, r := range restrictions {
			if r.Allowed(message) {
				return true
			}
		}
		return false
	}}
}

// Not inverts a restriction.
func Not[M any](name string, inner Restriction[M]) Restriction[M] {
	return restriction[M]{name: name, allowed: func(message M) bool {
		return !inner.Allowed(message)
	}}
}
