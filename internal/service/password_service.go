package service

type PasswordService interface {
	Hash(password string) (string, error)
	// Compare reports a mismatch as false, nil; an error means the stored
	// hash could not be evaluated.
	Compare(hash, password string) (bool, error)
}
