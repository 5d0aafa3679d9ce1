// Package common contains shared constants and sentinel errors used across
// gophcheck components.
package common

// DefaultArtifactName is the file name the sealer writes and the server
// publishes over HTTP.
const DefaultArtifactName = "barcodes.json"

// DefaultCipherKey and DefaultSalt are the pre-shared values baked into the
// checker and the sealer. They obfuscate the code list, they do not protect it.
const (
	DefaultCipherKey = "MySecretAESKey123"
	DefaultSalt      = "MyUniqueSalt123"
)
