package catalog

// Genre is a music genre record.
type Genre struct {
	ID        string
	Name      string
	Listeners int32
}

// ListenHistory is the ordered sequence of genres a user has listened to,
// most recent last. It is keyed by the owning user and has no identity of
// its own.
type ListenHistory struct {
	GenreIDs []string
}
