package ncerr

// Constructors for the errors defined in RFC6241 Appendix A.
//
// Each returns an *Error with the error-tag (and, where the RFC
// mandates it, the error-type) populated, modified by any options.

func InUse(opts ...Option) *Error { return New(TypeApplication, "in-use", opts...) }

func InvalidValue(opts ...Option) *Error { return New(TypeApplication, "invalid-value", opts...) }

func TooBig(opts ...Option) *Error { return New(TypeApplication, "too-big", opts...) }

func MissingAttribute(attributeName, elementName string, opts ...Option) *Error {
	return New(TypeApplication, "missing-attribute",
		append([]Option{WithBadAttribute(attributeName), WithBadElement(elementName)}, opts...)...)
}

func BadAttribute(attributeName, elementName string, opts ...Option) *Error {
	return New(TypeApplication, "bad-attribute",
		append([]Option{WithBadAttribute(attributeName), WithBadElement(elementName)}, opts...)...)
}

func UnknownAttribute(attributeName, elementName string, opts ...Option) *Error {
	return New(TypeApplication, "unknown-attribute",
		append([]Option{WithBadAttribute(attributeName), WithBadElement(elementName)}, opts...)...)
}

func MissingElement(elementName string, opts ...Option) *Error {
	return New(TypeApplication, "missing-element",
		append([]Option{WithBadElement(elementName)}, opts...)...)
}

func BadElement(elementName string, opts ...Option) *Error {
	return New(TypeApplication, "bad-element",
		append([]Option{WithBadElement(elementName)}, opts...)...)
}

func UnknownElement(elementName string, opts ...Option) *Error {
	return New(TypeApplication, "unknown-element",
		append([]Option{WithBadElement(elementName)}, opts...)...)
}

func UnknownNamespace(elementName, namespace string, opts ...Option) *Error {
	return New(TypeApplication, "unknown-namespace",
		append([]Option{WithBadElement(elementName), WithBadNamespace(namespace)}, opts...)...)
}

func AccessDenied(opts ...Option) *Error { return New(TypeApplication, "access-denied", opts...) }

// LockDenied returns a lock-denied error naming the session holding
// the lock. The error-type is always protocol for lock-denied.
func LockDenied(sessionID string, opts ...Option) *Error {
	e := New(TypeProtocol, "lock-denied",
		append([]Option{WithSessionID(sessionID)}, opts...)...)
	e.Type = TypeProtocol
	return e
}

func ResourceDenied(opts ...Option) *Error { return New(TypeApplication, "resource-denied", opts...) }

func RollbackFailed(opts ...Option) *Error { return New(TypeApplication, "rollback-failed", opts...) }

// DataExists is always an application layer error.
func DataExists(opts ...Option) *Error {
	e := New(TypeApplication, "data-exists", opts...)
	e.Type = TypeApplication
	return e
}

// DataMissing is always an application layer error.
func DataMissing(opts ...Option) *Error {
	e := New(TypeApplication, "data-missing", opts...)
	e.Type = TypeApplication
	return e
}

func OperationNotSupported(opts ...Option) *Error {
	return New(TypeApplication, "operation-not-supported", opts...)
}

func OperationFailed(opts ...Option) *Error {
	return New(TypeApplication, "operation-failed", opts...)
}

// MalformedMessage is always an rpc layer error.
func MalformedMessage(opts ...Option) *Error {
	e := New(TypeRPC, "malformed-message", opts...)
	e.Type = TypeRPC
	return e
}
