package main

import "golang.org/x/crypto/bcrypt"

// hashPassword salts and hashes with bcrypt. The digest embeds the salt and
// cost, so verification needs no extra state.
func hashPassword(plain string, cost int) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// checkPassword compares in constant time. The plaintext never leaves this
// function, in particular not through error values.
func checkPassword(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
