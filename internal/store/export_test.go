package store

// Cheap scrypt parameters keep the tests fast.
func (s *CredentialFileStore) UseTestKDF() { s.kdf = kdfParams{N: 1 << 10, R: 8, P: 1} }
