package repositories

// ErrNotFound means no game id is remembered for the account.
type ErrNotFound struct {
}

func (e *ErrNotFound) Error() string {
	return "no remembered game id"
}

func IsNotFound(err error) bool {
	_, ok := err.(*ErrNotFound)
	return ok
}
