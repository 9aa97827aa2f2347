package domain

// Capabilities declares which operations of a settings store tolerate
// concurrent calls. The store does not enforce these itself; a coordinator
// must serialise every operation whose flag is false.
type Capabilities struct {
	// ConcurrentRegister allows register calls to overlap each other.
	ConcurrentRegister bool

	// ConcurrentUnregister allows unregister calls to overlap each other.
	ConcurrentUnregister bool

	// ConcurrentUpdate allows value updates to overlap each other.
	ConcurrentUpdate bool
}
