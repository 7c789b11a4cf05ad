/*
Package security provides optional at-rest encryption for node and
edge payload bytes.

PayloadCipher wraps AES-256-GCM: Encrypt prepends a random nonce to
the sealed ciphertext, Decrypt reverses it. Content addressing always
runs over plaintext — a PayloadCipher changes what pkg/cas physically
writes to a pack, never the digest a caller gets back. A deployment
that wants payloads encrypted at rest configures cas.Options.Cipher at
Open time; pkg/cas then encrypts on Put and decrypts on Get, so no
caller above it ever has to know encryption is active. This is
independent of pkg/capability's access control: capabilities govern
who may read or write a resource; PayloadCipher governs whether the
bytes are intelligible to anyone who bypasses that control and reads a
pack file directly off disk.
*/
package security
